package entity

import "time"

// Tipos de evento publicados después del commit (consumidos por reportes).
const (
	EventIntakeRecorded   = "intake.recorded"
	EventIntakeCorrected  = "intake.corrected"
	EventIntakeDeleted    = "intake.deleted"
	EventRequestCreated   = "request.created"
	EventRequestApproved  = "request.approved"
	EventRequestReceived  = "request.received"
	EventDispatchCreated  = "dispatch.created"
	EventDispatchReceived = "dispatch.received"
	EventDispatchAmended  = "dispatch.amended"
	EventDispatchDeleted  = "dispatch.deleted"
	EventSaleCreated      = "sale.created"
	EventSaleUpdated      = "sale.updated"
	EventSaleDeleted      = "sale.deleted"
)

// StockEvent hecho de negocio con los movimientos de ledger que produjo.
type StockEvent struct {
	Type       string
	EntityID   string
	OutletID   string
	ActorID    string
	Postings   []LedgerPosting
	OccurredAt time.Time
}
