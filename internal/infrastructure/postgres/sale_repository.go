package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository    = (*SaleRepo)(nil)
	_ repository.RevenueRepository = (*RevenueRepo)(nil)
)

// SaleRepo persistencia de ventas: cabecera (sales), líneas (sale_lines) y
// consumo agregado de material (sale_consumptions).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, outlet_id, cashier_id, payment_method, payment_proof_url, sold_at, total, created_at, updated_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.OutletID, &s.CashierID, &s.PaymentMethod, &s.PaymentProofURL,
		&s.SoldAt, &s.Total, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create guarda cabecera, líneas y consumo. Debe ejecutarse dentro de una transacción.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, outlet_id, cashier_id, payment_method, payment_proof_url, sold_at, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.OutletID, s.CashierID, s.PaymentMethod, s.PaymentProofURL, s.SoldAt, s.Total, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: outlet %s", domain.ErrCatalogReferenceNotFound, s.OutletID)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return r.insertChildren(ctx, s)
}

// Replace actualiza la cabecera y reemplaza líneas y consumo.
func (r *SaleRepo) Replace(ctx context.Context, s *entity.Sale) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales SET payment_method = $2, payment_proof_url = $3, sold_at = $4, total = $5, updated_at = $6
		WHERE id = $1`,
		s.ID, s.PaymentMethod, s.PaymentProofURL, s.SoldAt, s.Total, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := r.deleteChildren(ctx, s.ID); err != nil {
		return err
	}
	return r.insertChildren(ctx, s)
}

func (r *SaleRepo) insertChildren(ctx context.Context, s *entity.Sale) error {
	for _, l := range s.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_lines (id, sale_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, s.ID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.MissingCatalog("product", l.ProductID)
			}
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	for _, c := range s.Consumption {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_consumptions (sale_id, material_id, quantity)
			VALUES ($1, $2, $3)`,
			s.ID, c.MaterialID, c.Quantity)
		if err != nil {
			return fmt.Errorf("insert sale consumption: %w", err)
		}
	}
	return nil
}

func (r *SaleRepo) deleteChildren(ctx context.Context, saleID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_lines WHERE sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("delete sale lines: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_consumptions WHERE sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("delete sale consumptions: %w", err)
	}
	return nil
}

// Delete elimina la venta; líneas y consumo caen por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene la venta completa.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate obtiene la venta completa bloqueando la cabecera.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadChildren(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepo) loadChildren(ctx context.Context, s *entity.Sale) error {
	lines, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, subtotal
		FROM sale_lines WHERE sale_id = $1 ORDER BY id`, s.ID)
	if err != nil {
		return fmt.Errorf("get sale lines: %w", err)
	}
	for lines.Next() {
		var l entity.SaleLine
		if err := lines.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			lines.Close()
			return fmt.Errorf("scan sale line: %w", err)
		}
		s.Lines = append(s.Lines, l)
	}
	lines.Close()
	if err := lines.Err(); err != nil {
		return fmt.Errorf("get sale lines: %w", err)
	}

	cons, err := r.q.Query(ctx, `
		SELECT material_id, quantity
		FROM sale_consumptions WHERE sale_id = $1 ORDER BY material_id`, s.ID)
	if err != nil {
		return fmt.Errorf("get sale consumption: %w", err)
	}
	defer cons.Close()
	for cons.Next() {
		var c entity.MaterialQuantity
		if err := cons.Scan(&c.MaterialID, &c.Quantity); err != nil {
			return fmt.Errorf("scan sale consumption: %w", err)
		}
		s.Consumption = append(s.Consumption, c)
	}
	return cons.Err()
}

// ListByOutlet ventas de un outlet, más recientes primero, con sus líneas.
func (r *SaleRepo) ListByOutlet(ctx context.Context, outletID string, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE outlet_id = $1
		ORDER BY sold_at DESC, id
		LIMIT $2 OFFSET $3`, outletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var out []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	for _, s := range out {
		if err := r.loadChildren(ctx, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RevenueRepo ingreso diario por outlet (daily_revenue).
type RevenueRepo struct {
	q Querier
}

// NewRevenueRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRevenueRepository(q Querier) *RevenueRepo {
	return &RevenueRepo{q: q}
}

// Add suma amount y salesDelta a la fila del día, creándola si no existe.
func (r *RevenueRepo) Add(ctx context.Context, outletID string, day time.Time, amount decimal.Decimal, salesDelta int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO daily_revenue (outlet_id, day, total, sales_count, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (outlet_id, day)
		DO UPDATE SET total = daily_revenue.total + EXCLUDED.total,
			sales_count = daily_revenue.sales_count + EXCLUDED.sales_count,
			updated_at = now()`,
		outletID, dateOnly(day), amount, salesDelta)
	if err != nil {
		return fmt.Errorf("upsert daily revenue: %w", err)
	}
	return nil
}

// Get ingreso del día; (nil, nil) si no hubo ventas.
func (r *RevenueRepo) Get(ctx context.Context, outletID string, day time.Time) (*entity.DailyRevenue, error) {
	rev := entity.DailyRevenue{OutletID: outletID, Day: day}
	err := r.q.QueryRow(ctx, `
		SELECT total, sales_count FROM daily_revenue
		WHERE outlet_id = $1 AND day = $2`,
		outletID, dateOnly(day)).Scan(&rev.Total, &rev.SalesCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get daily revenue: %w", err)
	}
	return &rev, nil
}

// dateOnly trunca a la fecha UTC, tal como se guarda la columna day (DATE).
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
