package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de stock (sólo avanzan).
const (
	RequestStatusRequested  = "requested"
	RequestStatusApproved   = "approved"   // aprobación directa: ledgers ya movidos
	RequestStatusDispatched = "dispatched" // atendida por un despacho en tránsito
	RequestStatusReceived   = "received"   // terminal
)

// StockRequest pedido de material de un outlet a la bodega.
type StockRequest struct {
	ID          string
	OutletID    string
	MaterialID  string
	Quantity    decimal.Decimal
	Status      string
	RequestedBy string
	ApprovedBy  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsFinal indica si la solicitud ya no admite transiciones.
func (r *StockRequest) IsFinal() bool { return r.Status == RequestStatusReceived }

// IsPending indica si la solicitud aún no fue atendida.
func (r *StockRequest) IsPending() bool { return r.Status == RequestStatusRequested }
