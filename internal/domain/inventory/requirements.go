package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// Line producto × cantidad de una venta.
type Line struct {
	ProductID string
	Quantity  int64
}

// Requirements calcula el material requerido por un conjunto de líneas:
// Σ (cantidad de la línea × ratio BOM), agregado por material y ordenado por material.
func Requirements(lines []Line, products map[string]*entity.Product) ([]entity.MaterialQuantity, error) {
	acc := make(map[string]decimal.Decimal)
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, domain.ErrInvalidInput
		}
		p, ok := products[l.ProductID]
		if !ok || p == nil {
			return nil, domain.MissingCatalog("product", l.ProductID)
		}
		if !p.Sellable() {
			return nil, domain.MissingCatalog("bom", l.ProductID)
		}
		qty := decimal.NewFromInt(l.Quantity)
		for _, b := range p.BOM {
			acc[b.MaterialID] = acc[b.MaterialID].Add(qty.Mul(b.Ratio))
		}
	}
	out := make([]entity.MaterialQuantity, 0, len(acc))
	for materialID, q := range acc {
		out = append(out, entity.MaterialQuantity{MaterialID: materialID, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out, nil
}

// ConsumptionPostings convierte un consumo agregado en débitos del ledger del outlet.
func ConsumptionPostings(outletID string, consumption []entity.MaterialQuantity) []entity.LedgerPosting {
	out := make([]entity.LedgerPosting, 0, len(consumption))
	for _, c := range consumption {
		out = append(out, entity.Debit(entity.OutletKey(outletID, c.MaterialID), c.Quantity))
	}
	return out
}
