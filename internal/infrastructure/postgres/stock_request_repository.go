package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

var _ repository.StockRequestRepository = (*StockRequestRepo)(nil)

// StockRequestRepo persistencia de solicitudes de stock de los outlets.
type StockRequestRepo struct {
	q Querier
}

// NewStockRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRequestRepository(q Querier) *StockRequestRepo {
	return &StockRequestRepo{q: q}
}

const stockRequestColumns = `id, outlet_id, material_id, quantity, status, requested_by, approved_by, created_at, updated_at`

func scanStockRequest(row pgx.Row) (*entity.StockRequest, error) {
	var sr entity.StockRequest
	err := row.Scan(&sr.ID, &sr.OutletID, &sr.MaterialID, &sr.Quantity, &sr.Status,
		&sr.RequestedBy, &sr.ApprovedBy, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

// Create persiste una solicitud nueva.
func (r *StockRequestRepo) Create(ctx context.Context, sr *entity.StockRequest) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_requests (id, outlet_id, material_id, quantity, status, requested_by, approved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sr.ID, sr.OutletID, sr.MaterialID, sr.Quantity, sr.Status, sr.RequestedBy, sr.ApprovedBy, sr.CreatedAt, sr.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: outlet %s o material %s", domain.ErrCatalogReferenceNotFound, sr.OutletID, sr.MaterialID)
		}
		return fmt.Errorf("insert stock request: %w", err)
	}
	return nil
}

// Update persiste el cambio de estado.
func (r *StockRequestRepo) Update(ctx context.Context, sr *entity.StockRequest) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_requests SET status = $2, approved_by = $3, updated_at = $4
		WHERE id = $1`,
		sr.ID, sr.Status, sr.ApprovedBy, sr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *StockRequestRepo) GetByID(ctx context.Context, id string) (*entity.StockRequest, error) {
	return r.get(ctx, `SELECT `+stockRequestColumns+` FROM stock_requests WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea la solicitud: serializa aprobaciones y despachos concurrentes.
func (r *StockRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRequest, error) {
	return r.get(ctx, `SELECT `+stockRequestColumns+` FROM stock_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockRequestRepo) get(ctx context.Context, query, id string) (*entity.StockRequest, error) {
	sr, err := scanStockRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock request: %w", err)
	}
	return sr, nil
}

// List solicitudes más recientes primero.
func (r *StockRequestRepo) List(ctx context.Context, filter repository.StockRequestFilter, limit, offset int) ([]*entity.StockRequest, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+stockRequestColumns+` FROM stock_requests
		WHERE ($1::text = '' OR outlet_id = $1)
		  AND ($2::text = '' OR status = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`, filter.OutletID, filter.Status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock requests: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockRequest
	for rows.Next() {
		sr, err := scanStockRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock request: %w", err)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}
