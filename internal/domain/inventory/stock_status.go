package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// StockStatus marca una fila como crítica cuando la cantidad no supera el mínimo del material.
func StockStatus(quantity, minimum decimal.Decimal) string {
	if quantity.LessThanOrEqual(minimum) {
		return entity.StockStatusCritical
	}
	return entity.StockStatusOK
}
