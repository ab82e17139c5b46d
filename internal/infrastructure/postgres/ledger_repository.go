package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/metrics"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo ledgers de bodega (warehouse_stock) y outlets (outlet_stock) sobre PostgreSQL.
// Cada crédito/débito es una única sentencia atómica; el débito está protegido por
// "quantity >= $n" en el WHERE y por el CHECK (quantity >= 0) de la tabla.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Get obtiene la fila o una fila en cero si no existe.
func (r *LedgerRepo) Get(ctx context.Context, key entity.LedgerKey) (*entity.LedgerRow, error) {
	return r.selectRow(ctx, key, false)
}

// LockForUpdate bloquea las filas existentes (SELECT FOR UPDATE) en el orden recibido.
func (r *LedgerRepo) LockForUpdate(ctx context.Context, keys []entity.LedgerKey) (map[entity.LedgerKey]*entity.LedgerRow, error) {
	out := make(map[entity.LedgerKey]*entity.LedgerRow, len(keys))
	for _, k := range keys {
		row, err := r.selectRow(ctx, k, true)
		if err != nil {
			return nil, err
		}
		out[k] = row
	}
	return out, nil
}

func (r *LedgerRepo) selectRow(ctx context.Context, key entity.LedgerKey, forUpdate bool) (*entity.LedgerRow, error) {
	var (
		query string
		args  []any
	)
	if key.IsWarehouse() {
		query = `SELECT quantity, updated_at FROM warehouse_stock WHERE material_id = $1`
		args = []any{key.MaterialID}
	} else {
		query = `SELECT quantity, updated_at FROM outlet_stock WHERE outlet_id = $1 AND material_id = $2`
		args = []any{key.OutletID, key.MaterialID}
	}
	if forUpdate {
		query += ` FOR UPDATE`
	}
	row := entity.LedgerRow{Key: key}
	err := r.q.QueryRow(ctx, query, args...).Scan(&row.Quantity, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.LedgerRow{Key: key, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get ledger row: %w", err)
	}
	return &row, nil
}

// Credit upsert: crea la fila en el primer contacto y suma amount.
func (r *LedgerRepo) Credit(ctx context.Context, key entity.LedgerKey, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	var (
		query string
		args  []any
	)
	if key.IsWarehouse() {
		query = `
			INSERT INTO warehouse_stock (material_id, quantity, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (material_id)
			DO UPDATE SET quantity = warehouse_stock.quantity + EXCLUDED.quantity, updated_at = now()
			RETURNING quantity`
		args = []any{key.MaterialID, amount}
	} else {
		query = `
			INSERT INTO outlet_stock (outlet_id, material_id, quantity, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (outlet_id, material_id)
			DO UPDATE SET quantity = outlet_stock.quantity + EXCLUDED.quantity, updated_at = now()
			RETURNING quantity`
		args = []any{key.OutletID, key.MaterialID, amount}
	}
	var qty decimal.Decimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&qty); err != nil {
		if isForeignKeyViolation(err) {
			return decimal.Zero, domain.MissingCatalog("material", key.MaterialID)
		}
		return decimal.Zero, fmt.Errorf("credit ledger: %w", err)
	}
	metrics.LedgerPostingsTotal.WithLabelValues(metrics.Site(key.IsWarehouse()), "credit").Inc()
	return qty, nil
}

// Debit resta amount sólo si la fila tiene al menos esa cantidad; si no, devuelve *domain.StockError.
func (r *LedgerRepo) Debit(ctx context.Context, key entity.LedgerKey, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	var (
		query string
		args  []any
	)
	if key.IsWarehouse() {
		query = `
			UPDATE warehouse_stock SET quantity = quantity - $2, updated_at = now()
			WHERE material_id = $1 AND quantity >= $2
			RETURNING quantity`
		args = []any{key.MaterialID, amount}
	} else {
		query = `
			UPDATE outlet_stock SET quantity = quantity - $3, updated_at = now()
			WHERE outlet_id = $1 AND material_id = $2 AND quantity >= $3
			RETURNING quantity`
		args = []any{key.OutletID, key.MaterialID, amount}
	}
	var qty decimal.Decimal
	err := r.q.QueryRow(ctx, query, args...).Scan(&qty)
	if err == nil {
		metrics.LedgerPostingsTotal.WithLabelValues(metrics.Site(key.IsWarehouse()), "debit").Inc()
		return qty, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("debit ledger: %w", err)
	}

	current, err := r.selectRow(ctx, key, false)
	if err != nil {
		return decimal.Zero, err
	}
	metrics.LedgerRejectedDebitsTotal.WithLabelValues(metrics.Site(key.IsWarehouse())).Inc()
	if key.IsWarehouse() {
		return decimal.Zero, domain.NewWarehouseStockError(key.MaterialID, amount, current.Quantity)
	}
	return decimal.Zero, domain.NewOutletStockError(key.OutletID, key.MaterialID, amount, current.Quantity)
}

// ListWarehouse filas del ledger de bodega ordenadas por material.
func (r *LedgerRepo) ListWarehouse(ctx context.Context, filter repository.LedgerFilter) ([]*entity.LedgerRow, error) {
	query := `SELECT '' AS outlet_id, material_id, quantity, updated_at FROM warehouse_stock`
	var args []any
	if filter.MaterialID != "" {
		query += ` WHERE material_id = $1`
		args = append(args, filter.MaterialID)
	}
	query += ` ORDER BY material_id`
	return r.list(ctx, query, args...)
}

// ListOutlet filas del ledger de outlets ordenadas por outlet y material.
func (r *LedgerRepo) ListOutlet(ctx context.Context, filter repository.LedgerFilter) ([]*entity.LedgerRow, error) {
	var (
		where []string
		args  []any
	)
	if filter.OutletID != "" {
		args = append(args, filter.OutletID)
		where = append(where, fmt.Sprintf("outlet_id = $%d", len(args)))
	}
	if filter.MaterialID != "" {
		args = append(args, filter.MaterialID)
		where = append(where, fmt.Sprintf("material_id = $%d", len(args)))
	}
	query := `SELECT outlet_id, material_id, quantity, updated_at FROM outlet_stock`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY outlet_id, material_id`
	return r.list(ctx, query, args...)
}

func (r *LedgerRepo) list(ctx context.Context, query string, args ...any) ([]*entity.LedgerRow, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var out []*entity.LedgerRow
	for rows.Next() {
		var row entity.LedgerRow
		if err := rows.Scan(&row.Key.OutletID, &row.Key.MaterialID, &row.Quantity, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}
