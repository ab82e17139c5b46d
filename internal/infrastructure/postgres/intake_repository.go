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

var _ repository.IntakeRepository = (*IntakeRepo)(nil)

// IntakeRepo persistencia de recepciones en bodega.
type IntakeRepo struct {
	q Querier
}

// NewIntakeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIntakeRepository(q Querier) *IntakeRepo {
	return &IntakeRepo{q: q}
}

const intakeColumns = `id, material_id, quantity, supplier, received_at, created_by, created_at, updated_at`

func scanIntake(row pgx.Row) (*entity.Intake, error) {
	var in entity.Intake
	err := row.Scan(&in.ID, &in.MaterialID, &in.Quantity, &in.Supplier, &in.ReceivedAt,
		&in.CreatedBy, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// Create persiste una recepción.
func (r *IntakeRepo) Create(ctx context.Context, in *entity.Intake) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO intakes (id, material_id, quantity, supplier, received_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		in.ID, in.MaterialID, in.Quantity, in.Supplier, in.ReceivedAt, in.CreatedBy, in.CreatedAt, in.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.MissingCatalog("material", in.MaterialID)
		}
		return fmt.Errorf("insert intake: %w", err)
	}
	return nil
}

// Update corrige cantidad, proveedor y fecha de una recepción.
func (r *IntakeRepo) Update(ctx context.Context, in *entity.Intake) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE intakes SET quantity = $2, supplier = $3, received_at = $4, updated_at = $5
		WHERE id = $1`,
		in.ID, in.Quantity, in.Supplier, in.ReceivedAt, in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update intake: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una recepción.
func (r *IntakeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM intakes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete intake: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una recepción por ID.
func (r *IntakeRepo) GetByID(ctx context.Context, id string) (*entity.Intake, error) {
	return r.get(ctx, `SELECT `+intakeColumns+` FROM intakes WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea la recepción hasta el fin de la transacción.
func (r *IntakeRepo) GetForUpdate(ctx context.Context, id string) (*entity.Intake, error) {
	return r.get(ctx, `SELECT `+intakeColumns+` FROM intakes WHERE id = $1 FOR UPDATE`, id)
}

func (r *IntakeRepo) get(ctx context.Context, query, id string) (*entity.Intake, error) {
	in, err := scanIntake(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get intake: %w", err)
	}
	return in, nil
}

// List recepciones más recientes primero, opcionalmente de un material.
func (r *IntakeRepo) List(ctx context.Context, materialID string, limit, offset int) ([]*entity.Intake, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+intakeColumns+` FROM intakes
		WHERE ($1::text = '' OR material_id = $1)
		ORDER BY received_at DESC, id
		LIMIT $2 OFFSET $3`, materialID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list intakes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Intake
	for rows.Next() {
		in, err := scanIntake(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intake: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
