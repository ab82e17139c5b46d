package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material insumo almacenable medido por cantidad. Lo administra el catálogo; el núcleo sólo lo lee.
type Material struct {
	ID               string
	Name             string
	Unit             string          // kg, l, pcs...
	WarehouseMinimum decimal.Decimal // umbral crítico en bodega
	OutletMinimum    decimal.Decimal // umbral crítico en outlet
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MinimumFor devuelve el umbral aplicable a una fila de ledger.
func (m *Material) MinimumFor(key LedgerKey) decimal.Decimal {
	if key.IsWarehouse() {
		return m.WarehouseMinimum
	}
	return m.OutletMinimum
}
