package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-outlets-api/internal/application/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/application/sales"
	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-outlets-api/pkg/config"
)

// Ensure TxRunner implements inventory.TxRunner and sales.SalesTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ sales.SalesTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Los conflictos de bloqueo (40001, 40P01, 55P03) reintentan la transacción completa
// hasta MaxAttempts veces; agotados, se devuelve domain.ErrTransientConflict.
type TxRunner struct {
	pool *pgxpool.Pool
	cfg  config.LedgerConfig
	log  zerolog.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, cfg config.LedgerConfig, log zerolog.Logger) *TxRunner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &TxRunner{pool: pool, cfg: cfg, log: log.With().Str("component", "tx_runner").Logger()}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(inventory.Stores) error) error {
	return r.transact(ctx, "ledger.tx", func(tx pgx.Tx) error {
		return fn(inventory.Stores{
			Ledger:     NewLedgerRepository(tx),
			Catalog:    NewCatalogRepository(tx),
			Intakes:    NewIntakeRepository(tx),
			Requests:   NewStockRequestRepository(tx),
			Dispatches: NewDispatchRepository(tx),
		})
	})
}

// RunSales inicia una transacción con los repositorios de ventas y ledger.
func (r *TxRunner) RunSales(ctx context.Context, fn func(sales.Stores) error) error {
	return r.transact(ctx, "sales.tx", func(tx pgx.Tx) error {
		return fn(sales.Stores{
			Ledger:  NewLedgerRepository(tx),
			Catalog: NewCatalogRepository(tx),
			Sales:   NewSaleRepository(tx),
			Revenue: NewRevenueRepository(tx),
		})
	})
}

func (r *TxRunner) transact(ctx context.Context, name string, fn func(pgx.Tx) error) error {
	ctx, span := metrics.StartSpan(ctx, name)
	defer span.End()
	start := time.Now()
	defer func() { metrics.TxDuration.Observe(time.Since(start).Seconds()) }()

	attempts, err := retry(ctx, r.cfg.MaxAttempts, r.cfg.RetryBase, func() error {
		return r.once(ctx, fn)
	})
	span.SetAttributes(attribute.Int("tx.attempts", attempts))
	switch {
	case err == nil:
		metrics.TxAttemptsTotal.WithLabelValues("committed").Inc()
	case isRetryable(err):
		metrics.TxAttemptsTotal.WithLabelValues("exhausted").Inc()
		r.log.Warn().Err(err).Int("attempts", attempts).Str("tx", name).Msg("conflicto de bloqueo persistente")
		err = fmt.Errorf("%w: %v", domain.ErrTransientConflict, err)
	default:
		metrics.TxAttemptsTotal.WithLabelValues("aborted").Inc()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TxRunner) once(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.cfg.LockTimeout > 0 {
		// SET no admite parámetros: el valor se formatea desde la configuración.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.cfg.LockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// retry ejecuta fn hasta maxAttempts veces mientras el error sea reintentable,
// con espera lineal base*intento entre intentos. Devuelve los intentos usados.
func retry(ctx context.Context, maxAttempts int, base time.Duration, fn func() error) (int, error) {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !isRetryable(err) || attempt >= maxAttempts {
			return attempt, err
		}
		select {
		case <-ctx.Done():
			return attempt, errors.Join(err, ctx.Err())
		case <-time.After(base * time.Duration(attempt)):
		}
	}
}
