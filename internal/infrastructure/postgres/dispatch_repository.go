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

var _ repository.DispatchRepository = (*DispatchRepo)(nil)

// DispatchRepo persistencia de despachos bodega → outlet.
// request_id es NULL cuando el despacho no atiende una solicitud; un índice único parcial
// impide dos despachos para la misma solicitud.
type DispatchRepo struct {
	q Querier
}

// NewDispatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{q: q}
}

const dispatchColumns = `id, material_id, outlet_id, COALESCE(request_id, ''), quantity, status, proof_url,
	dispatched_by, received_by, dispatched_at, received_at, created_at, updated_at`

func scanDispatch(row pgx.Row) (*entity.Dispatch, error) {
	var d entity.Dispatch
	err := row.Scan(&d.ID, &d.MaterialID, &d.OutletID, &d.RequestID, &d.Quantity, &d.Status, &d.ProofURL,
		&d.DispatchedBy, &d.ReceivedBy, &d.DispatchedAt, &d.ReceivedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create persiste un despacho nuevo.
func (r *DispatchRepo) Create(ctx context.Context, d *entity.Dispatch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO dispatches (id, material_id, outlet_id, request_id, quantity, status, proof_url,
			dispatched_by, received_by, dispatched_at, received_at, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4::text, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.ID, d.MaterialID, d.OutletID, d.RequestID, d.Quantity, d.Status, d.ProofURL,
		d.DispatchedBy, d.ReceivedBy, d.DispatchedAt, d.ReceivedAt, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: la solicitud %s ya tiene un despacho", domain.ErrConflict, d.RequestID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: outlet %s o material %s", domain.ErrCatalogReferenceNotFound, d.OutletID, d.MaterialID)
		}
		return fmt.Errorf("insert dispatch: %w", err)
	}
	return nil
}

// Update persiste material, cantidad, estado y datos de recepción.
func (r *DispatchRepo) Update(ctx context.Context, d *entity.Dispatch) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE dispatches SET material_id = $2, quantity = $3, status = $4, proof_url = $5,
			received_by = $6, received_at = $7, updated_at = $8
		WHERE id = $1`,
		d.ID, d.MaterialID, d.Quantity, d.Status, d.ProofURL, d.ReceivedBy, d.ReceivedAt, d.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.MissingCatalog("material", d.MaterialID)
		}
		return fmt.Errorf("update dispatch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un despacho.
func (r *DispatchRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM dispatches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dispatch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un despacho por ID.
func (r *DispatchRepo) GetByID(ctx context.Context, id string) (*entity.Dispatch, error) {
	return r.get(ctx, `SELECT `+dispatchColumns+` FROM dispatches WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea el despacho: dos recepciones concurrentes se serializan aquí.
func (r *DispatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Dispatch, error) {
	return r.get(ctx, `SELECT `+dispatchColumns+` FROM dispatches WHERE id = $1 FOR UPDATE`, id)
}

func (r *DispatchRepo) get(ctx context.Context, query, id string) (*entity.Dispatch, error) {
	d, err := scanDispatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch: %w", err)
	}
	return d, nil
}

// List despachos más recientes primero.
func (r *DispatchRepo) List(ctx context.Context, filter repository.DispatchFilter, limit, offset int) ([]*entity.Dispatch, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+dispatchColumns+` FROM dispatches
		WHERE ($1::text = '' OR outlet_id = $1)
		  AND ($2::text = '' OR status = $2)
		ORDER BY dispatched_at DESC, id
		LIMIT $3 OFFSET $4`, filter.OutletID, filter.Status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()

	var out []*entity.Dispatch
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
