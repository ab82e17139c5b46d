package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un despacho.
const (
	DispatchStatusSent     = "sent"
	DispatchStatusReceived = "received"
)

// Dispatch movimiento físico de material desde la bodega hacia un outlet.
// La bodega se debita al crear; el outlet se acredita al confirmar la recepción.
type Dispatch struct {
	ID           string
	MaterialID   string
	OutletID     string
	RequestID    string // vacío si no atiende una solicitud
	Quantity     decimal.Decimal
	Status       string
	ProofURL     string // comprobante de entrega (opcional)
	DispatchedBy string
	ReceivedBy   string
	DispatchedAt time.Time
	ReceivedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsReceived indica si el outlet ya fue acreditado.
func (d *Dispatch) IsReceived() bool { return d.Status == DispatchStatusReceived }

// Postings efecto acumulado del despacho sobre los ledgers según su estado.
func (d *Dispatch) Postings() []LedgerPosting {
	out := []LedgerPosting{Debit(WarehouseKey(d.MaterialID), d.Quantity)}
	if d.IsReceived() {
		out = append(out, Credit(OutletKey(d.OutletID, d.MaterialID), d.Quantity))
	}
	return out
}
