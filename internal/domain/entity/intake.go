package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Intake recepción de material en la bodega desde un proveedor externo.
// Quantity es la única representación decimal canónica: la misma cifra se persiste y se acredita.
type Intake struct {
	ID         string
	MaterialID string
	Quantity   decimal.Decimal
	Supplier   string
	ReceivedAt time.Time
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
