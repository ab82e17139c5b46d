package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo lectura de materiales, productos con su BOM y outlets.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador de catálogo. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

const materialColumns = `id, name, unit, warehouse_minimum, outlet_minimum, created_at, updated_at`

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	err := row.Scan(&m.ID, &m.Name, &m.Unit, &m.WarehouseMinimum, &m.OutletMinimum, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMaterial obtiene un material por ID.
func (r *CatalogRepo) GetMaterial(ctx context.Context, id string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// ListMaterials materiales por id; ids vacío devuelve todo el catálogo.
func (r *CatalogRepo) ListMaterials(ctx context.Context, ids []string) (map[string]*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials`
	var args []any
	if len(ids) > 0 {
		query += ` WHERE id = ANY($1)`
		args = append(args, ids)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*entity.Material)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

// GetProduct obtiene un producto con su BOM.
func (r *CatalogRepo) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	products, err := r.GetProducts(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return products[id], nil
}

// GetProducts productos con su BOM; los ids inexistentes no aparecen en el mapa.
func (r *CatalogRepo) GetProducts(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, name, price, available, created_at, updated_at
		FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = &p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	bom, err := r.q.Query(ctx, `
		SELECT product_id, material_id, ratio
		FROM bom_entries WHERE product_id = ANY($1)
		ORDER BY product_id, material_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get bom: %w", err)
	}
	defer bom.Close()
	for bom.Next() {
		var e entity.BOMEntry
		if err := bom.Scan(&e.ProductID, &e.MaterialID, &e.Ratio); err != nil {
			return nil, fmt.Errorf("scan bom entry: %w", err)
		}
		if p, ok := out[e.ProductID]; ok {
			p.BOM = append(p.BOM, e)
		}
	}
	return out, bom.Err()
}

// OutletExists indica si el outlet está registrado.
// ListProducts productos ordenados por nombre; reutiliza GetProducts para cargar el BOM.
func (r *CatalogRepo) ListProducts(ctx context.Context, availableOnly bool) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id FROM products
		WHERE NOT $1 OR available
		ORDER BY name, id`, availableOnly)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	byID, err := r.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *CatalogRepo) OutletExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM outlets WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("outlet exists: %w", err)
	}
	return exists, nil
}
