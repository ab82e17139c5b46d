package repository

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// StockRequestFilter filtros de listado de solicitudes.
type StockRequestFilter struct {
	OutletID string
	Status   string
}

// StockRequestRepository puerto de persistencia para solicitudes de stock.
type StockRequestRepository interface {
	Create(ctx context.Context, req *entity.StockRequest) error
	Update(ctx context.Context, req *entity.StockRequest) error
	GetByID(ctx context.Context, id string) (*entity.StockRequest, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockRequest, error)
	List(ctx context.Context, filter StockRequestFilter, limit, offset int) ([]*entity.StockRequest, error)
}
