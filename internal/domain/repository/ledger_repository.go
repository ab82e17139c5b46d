package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// LedgerFilter filtros de lectura de ledgers (vacío = sin filtro).
type LedgerFilter struct {
	OutletID   string
	MaterialID string
}

// LedgerRepository puerto de los ledgers de bodega y outlet.
// Credit y Debit son read-modify-write atómicos sobre una sola fila; no son idempotentes.
type LedgerRepository interface {
	// Get devuelve la fila o una fila en cero si aún no existe.
	Get(ctx context.Context, key entity.LedgerKey) (*entity.LedgerRow, error)
	// LockForUpdate bloquea las filas existentes (SELECT FOR UPDATE) en el orden recibido.
	// Las claves sin fila se devuelven en cero.
	LockForUpdate(ctx context.Context, keys []entity.LedgerKey) (map[entity.LedgerKey]*entity.LedgerRow, error)
	// Credit crea la fila si no existe y suma amount; devuelve la cantidad resultante.
	Credit(ctx context.Context, key entity.LedgerKey, amount decimal.Decimal) (decimal.Decimal, error)
	// Debit resta amount; devuelve *domain.StockError si el resultado sería negativo.
	Debit(ctx context.Context, key entity.LedgerKey, amount decimal.Decimal) (decimal.Decimal, error)
	ListWarehouse(ctx context.Context, filter LedgerFilter) ([]*entity.LedgerRow, error)
	ListOutlet(ctx context.Context, filter LedgerFilter) ([]*entity.LedgerRow, error)
}
