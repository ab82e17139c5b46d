package inventory

import "github.com/shopspring/decimal"

// Límites de una cantidad ingresada por un actor (recepción, solicitud, despacho).
const QuantityScale = 3

var maxQuantity = decimal.NewFromInt(1_000_000_000)

// ValidQuantity exige una cantidad positiva, con a lo sumo QuantityScale decimales
// y por debajo del máximo que admiten los ledgers.
func ValidQuantity(q decimal.Decimal) bool {
	if !q.IsPositive() || q.GreaterThan(maxQuantity) {
		return false
	}
	return q.Equal(q.Truncate(QuantityScale))
}
