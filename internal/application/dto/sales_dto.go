package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest producto × cantidad.
type SaleLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

// CreateSaleRequest body para POST /api/sales. El outlet sale del actor.
type CreateSaleRequest struct {
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash qris"`
	SoldAt        *time.Time        `json:"sold_at,omitempty"`
	Lines         []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateSaleRequest body para PUT /api/sales/:id: reemplaza las líneas.
type UpdateSaleRequest struct {
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash qris"`
	SoldAt        *time.Time        `json:"sold_at,omitempty"`
	Lines         []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleLineResponse línea de venta en respuestas.
type SaleLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// MaterialQuantityResponse consumo de un material.
type MaterialQuantityResponse struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// SaleResponse venta con detalle.
type SaleResponse struct {
	ID              string                     `json:"id"`
	OutletID        string                     `json:"outlet_id"`
	CashierID       string                     `json:"cashier_id"`
	PaymentMethod   string                     `json:"payment_method"`
	PaymentProofURL string                     `json:"payment_proof_url,omitempty"`
	SoldAt          time.Time                  `json:"sold_at"`
	Total           decimal.Decimal            `json:"total"`
	Lines           []SaleLineResponse         `json:"lines"`
	Consumption     []MaterialQuantityResponse `json:"consumption"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// SaleListResponse lista paginada de ventas de un outlet.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// DailyRevenueResponse ingreso de un outlet en un día.
type DailyRevenueResponse struct {
	OutletID   string          `json:"outlet_id"`
	Day        string          `json:"day"` // YYYY-MM-DD
	Total      decimal.Decimal `json:"total"`
	SalesCount int64           `json:"sales_count"`
}

// ProductQuery filtros de GET /api/products.
type ProductQuery struct {
	IncludeUnavailable bool `query:"include_unavailable"`
}

// BOMEntryResponse material consumido por unidad vendida.
type BOMEntryResponse struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name,omitempty"`
	Unit         string          `json:"unit,omitempty"`
	Ratio        decimal.Decimal `json:"ratio"`
}

// ProductResponse producto del catálogo con su receta.
type ProductResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Price     decimal.Decimal    `json:"price"`
	Available bool               `json:"available"`
	BOM       []BOMEntryResponse `json:"bom"`
}

// ProductListResponse catálogo de productos.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
}
