package repository

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// CatalogRepository puerto de sólo lectura sobre materiales, productos (con BOM) y outlets.
// Los getters devuelven (nil, nil) cuando el id no existe.
type CatalogRepository interface {
	GetMaterial(ctx context.Context, id string) (*entity.Material, error)
	// ListMaterials devuelve los materiales indicados; ids vacío = todos.
	ListMaterials(ctx context.Context, ids []string) (map[string]*entity.Material, error)
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	GetProducts(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	// ListProducts productos con su BOM ordenados por nombre; availableOnly omite los no vendibles.
	ListProducts(ctx context.Context, availableOnly bool) ([]*entity.Product, error)
	OutletExists(ctx context.Context, id string) (bool, error)
}
