package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product artículo vendible compuesto por materiales (BOM).
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio de venta vigente
	Available bool
	BOM       []BOMEntry
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BOMEntry cantidad de material consumida por unidad de producto.
type BOMEntry struct {
	ProductID  string
	MaterialID string
	Ratio      decimal.Decimal // > 0
}

// Sellable un producto sin BOM no puede venderse.
func (p *Product) Sellable() bool {
	return len(p.BOM) > 0
}
