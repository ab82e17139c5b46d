package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// SaleRepository puerto de persistencia para ventas con sus líneas y su consumo de material.
type SaleRepository interface {
	// Create guarda cabecera, líneas y consumo.
	Create(ctx context.Context, sale *entity.Sale) error
	// Replace actualiza la cabecera y reemplaza líneas y consumo.
	Replace(ctx context.Context, sale *entity.Sale) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	ListByOutlet(ctx context.Context, outletID string, limit, offset int) ([]*entity.Sale, error)
}

// RevenueRepository ingreso diario por outlet, mantenido en la misma transacción que la venta.
type RevenueRepository interface {
	Add(ctx context.Context, outletID string, day time.Time, amount decimal.Decimal, salesDelta int64) error
	Get(ctx context.Context, outletID string, day time.Time) (*entity.DailyRevenue, error)
}
