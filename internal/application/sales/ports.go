package sales

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

// Stores repositorios atados a la transacción de una venta.
type Stores struct {
	Ledger  repository.LedgerRepository
	Catalog repository.CatalogRepository
	Sales   repository.SaleRepository
	Revenue repository.RevenueRepository
}

// SalesTxRunner ejecuta fn en una transacción con los repositorios de ventas y ledger.
type SalesTxRunner interface {
	RunSales(ctx context.Context, fn func(s Stores) error) error
}
