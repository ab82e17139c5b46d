package repository

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// DispatchFilter filtros de listado de despachos.
type DispatchFilter struct {
	OutletID string
	Status   string
}

// DispatchRepository puerto de persistencia para despachos.
type DispatchRepository interface {
	Create(ctx context.Context, d *entity.Dispatch) error
	Update(ctx context.Context, d *entity.Dispatch) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Dispatch, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Dispatch, error)
	List(ctx context.Context, filter DispatchFilter, limit, offset int) ([]*entity.Dispatch, error)
}
