package inventory

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

// Stores repositorios atados a una misma transacción.
type Stores struct {
	Ledger     repository.LedgerRepository
	Catalog    repository.CatalogRepository
	Intakes    repository.IntakeRepository
	Requests   repository.StockRequestRepository
	Dispatches repository.DispatchRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error nada de lo escrito persiste. Los conflictos de bloqueo se reintentan
// un número acotado de veces; agotados, se devuelve domain.ErrTransientConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(s Stores) error) error
}
