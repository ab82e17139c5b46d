package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago.
const (
	PaymentMethodCash = "cash"
	PaymentMethodQRIS = "qris"
)

// ValidPaymentMethod indica si method es un método de pago soportado.
func ValidPaymentMethod(method string) bool {
	return method == PaymentMethodCash || method == PaymentMethodQRIS
}

// Sale venta completada en un outlet.
type Sale struct {
	ID              string
	OutletID        string
	CashierID       string
	PaymentMethod   string
	PaymentProofURL string
	SoldAt          time.Time
	Total           decimal.Decimal // = Σ Subtotal
	Lines           []SaleLine
	Consumption     []MaterialQuantity // consumo agregado debitado al outlet
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SaleLine producto × cantidad dentro de una venta.
type SaleLine struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal // precio del producto al momento de la venta
	Subtotal  decimal.Decimal
}

// MaterialQuantity cantidad agregada de un material.
type MaterialQuantity struct {
	MaterialID string
	Quantity   decimal.Decimal
}

// DailyRevenue ingreso acumulado de un outlet en un día.
type DailyRevenue struct {
	OutletID   string
	Day        time.Time
	Total      decimal.Decimal
	SalesCount int64
}
