package sales

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

// ProductQueryUseCase lectura del catálogo de productos vendibles con su BOM.
type ProductQueryUseCase struct {
	catalog repository.CatalogRepository
}

// NewProductQueryUseCase construye el caso de uso.
func NewProductQueryUseCase(catalog repository.CatalogRepository) *ProductQueryUseCase {
	return &ProductQueryUseCase{catalog: catalog}
}

// List devuelve los productos disponibles. Sólo owner y supervisor ven también los retirados.
func (uc *ProductQueryUseCase) List(ctx context.Context, actor entity.Actor, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	availableOnly := !(q.IncludeUnavailable && actor.HasOversight())
	products, err := uc.catalog.ListProducts(ctx, availableOnly)
	if err != nil {
		return nil, err
	}
	materials, err := uc.materialsFor(ctx, products)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{Products: make([]dto.ProductResponse, 0, len(products)), Total: len(products)}
	for _, p := range products {
		out.Products = append(out.Products, toProductResponse(p, materials))
	}
	return out, nil
}

// GetByID un producto; los no disponibles son ErrNotFound para quien no supervisa.
func (uc *ProductQueryUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.ProductResponse, error) {
	p, err := uc.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || (!p.Available && !actor.HasOversight()) {
		return nil, domain.ErrNotFound
	}
	materials, err := uc.materialsFor(ctx, []*entity.Product{p})
	if err != nil {
		return nil, err
	}
	out := toProductResponse(p, materials)
	return &out, nil
}

// materialsFor materiales referenciados por los BOM; ListMaterials con ids vacío devolvería todo.
func (uc *ProductQueryUseCase) materialsFor(ctx context.Context, products []*entity.Product) (map[string]*entity.Material, error) {
	ids := bomMaterialIDs(products)
	if len(ids) == 0 {
		return nil, nil
	}
	return uc.catalog.ListMaterials(ctx, ids)
}

func bomMaterialIDs(products []*entity.Product) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, p := range products {
		for _, e := range p.BOM {
			if _, ok := seen[e.MaterialID]; !ok {
				seen[e.MaterialID] = struct{}{}
				ids = append(ids, e.MaterialID)
			}
		}
	}
	return ids
}

func toProductResponse(p *entity.Product, materials map[string]*entity.Material) dto.ProductResponse {
	bom := make([]dto.BOMEntryResponse, 0, len(p.BOM))
	for _, e := range p.BOM {
		entry := dto.BOMEntryResponse{MaterialID: e.MaterialID, Ratio: e.Ratio}
		if m, ok := materials[e.MaterialID]; ok {
			entry.MaterialName = m.Name
			entry.Unit = m.Unit
		}
		bom = append(bom, entry)
	}
	return dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Available: p.Available,
		BOM:       bom,
	}
}
