package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-outlets-api/internal/application/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/application/sales"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

// Ensure Store implements inventory.TxRunner and sales.SalesTxRunner.
var _ inventory.TxRunner = (*Store)(nil)
var _ sales.SalesTxRunner = (*Store)(nil)

// Store almacenamiento transaccional en proceso. Cada transacción trabaja sobre una copia
// del estado bajo un mutex global y la publica sólo si fn termina sin error (serializable).
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type revenueKey struct {
	outletID string
	day      string
}

type state struct {
	materials  map[string]*entity.Material
	products   map[string]*entity.Product
	outlets    map[string]string
	ledger     map[entity.LedgerKey]*entity.LedgerRow
	intakes    map[string]*entity.Intake
	requests   map[string]*entity.StockRequest
	dispatches map[string]*entity.Dispatch
	sales      map[string]*entity.Sale
	revenue    map[revenueKey]*entity.DailyRevenue
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		state: &state{
			materials:  make(map[string]*entity.Material),
			products:   make(map[string]*entity.Product),
			outlets:    make(map[string]string),
			ledger:     make(map[entity.LedgerKey]*entity.LedgerRow),
			intakes:    make(map[string]*entity.Intake),
			requests:   make(map[string]*entity.StockRequest),
			dispatches: make(map[string]*entity.Dispatch),
			sales:      make(map[string]*entity.Sale),
			revenue:    make(map[revenueKey]*entity.DailyRevenue),
		},
		now: time.Now,
	}
}

// clone copia el estado mutable; el catálogo es de sólo lectura y se comparte.
func (st *state) clone() *state {
	c := &state{
		materials:  st.materials,
		products:   st.products,
		outlets:    st.outlets,
		ledger:     make(map[entity.LedgerKey]*entity.LedgerRow, len(st.ledger)),
		intakes:    make(map[string]*entity.Intake, len(st.intakes)),
		requests:   make(map[string]*entity.StockRequest, len(st.requests)),
		dispatches: make(map[string]*entity.Dispatch, len(st.dispatches)),
		sales:      make(map[string]*entity.Sale, len(st.sales)),
		revenue:    make(map[revenueKey]*entity.DailyRevenue, len(st.revenue)),
	}
	for k, v := range st.ledger {
		row := *v
		c.ledger[k] = &row
	}
	for k, v := range st.intakes {
		c.intakes[k] = copyIntake(v)
	}
	for k, v := range st.requests {
		c.requests[k] = copyRequest(v)
	}
	for k, v := range st.dispatches {
		c.dispatches[k] = copyDispatch(v)
	}
	for k, v := range st.sales {
		c.sales[k] = copySale(v)
	}
	for k, v := range st.revenue {
		r := *v
		c.revenue[k] = &r
	}
	return c
}

// Run ejecuta fn con repositorios atados a una copia del estado.
func (s *Store) Run(ctx context.Context, fn func(inventory.Stores) error) error {
	return s.transact(ctx, func(tx *state) error {
		return fn(inventory.Stores{
			Ledger:     &ledgerRepo{store: s, tx: tx},
			Catalog:    &catalogRepo{store: s, tx: tx},
			Intakes:    &intakeRepo{store: s, tx: tx},
			Requests:   &requestRepo{store: s, tx: tx},
			Dispatches: &dispatchRepo{store: s, tx: tx},
		})
	})
}

// RunSales ejecuta fn con los repositorios de ventas atados a una copia del estado.
func (s *Store) RunSales(ctx context.Context, fn func(sales.Stores) error) error {
	return s.transact(ctx, func(tx *state) error {
		return fn(sales.Stores{
			Ledger:  &ledgerRepo{store: s, tx: tx},
			Catalog: &catalogRepo{store: s, tx: tx},
			Sales:   &saleRepo{store: s, tx: tx},
			Revenue: &revenueRepo{store: s, tx: tx},
		})
	})
}

func (s *Store) transact(ctx context.Context, fn func(tx *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.state.clone()
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx
	return nil
}

// view ejecuta fn sobre el estado de la tx o, fuera de una tx, sobre el estado publicado.
func (s *Store) view(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// Ledger repositorio de ledgers fuera de transacción (lecturas).
func (s *Store) Ledger() repository.LedgerRepository { return &ledgerRepo{store: s} }

// Catalog repositorio de catálogo.
func (s *Store) Catalog() repository.CatalogRepository { return &catalogRepo{store: s} }

// Intakes repositorio de recepciones fuera de transacción.
func (s *Store) Intakes() repository.IntakeRepository { return &intakeRepo{store: s} }

// Requests repositorio de solicitudes fuera de transacción.
func (s *Store) Requests() repository.StockRequestRepository { return &requestRepo{store: s} }

// Dispatches repositorio de despachos fuera de transacción.
func (s *Store) Dispatches() repository.DispatchRepository { return &dispatchRepo{store: s} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() repository.SaleRepository { return &saleRepo{store: s} }

// Revenue repositorio de ingresos diarios fuera de transacción.
func (s *Store) Revenue() repository.RevenueRepository { return &revenueRepo{store: s} }

func copyIntake(v *entity.Intake) *entity.Intake {
	c := *v
	return &c
}

func copyRequest(v *entity.StockRequest) *entity.StockRequest {
	c := *v
	return &c
}

func copyDispatch(v *entity.Dispatch) *entity.Dispatch {
	c := *v
	return &c
}

func copySale(v *entity.Sale) *entity.Sale {
	c := *v
	c.Lines = append([]entity.SaleLine(nil), v.Lines...)
	c.Consumption = append([]entity.MaterialQuantity(nil), v.Consumption...)
	return &c
}
