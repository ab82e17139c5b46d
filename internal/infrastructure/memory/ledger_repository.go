package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

type ledgerRepo struct {
	store *Store
	tx    *state
}

func (r *ledgerRepo) Get(_ context.Context, key entity.LedgerKey) (*entity.LedgerRow, error) {
	var out *entity.LedgerRow
	err := r.store.view(r.tx, func(st *state) error {
		out = rowOrZero(st, key)
		return nil
	})
	return out, err
}

// LockForUpdate no necesita bloquear: la transacción ya tiene el estado en exclusiva.
func (r *ledgerRepo) LockForUpdate(_ context.Context, keys []entity.LedgerKey) (map[entity.LedgerKey]*entity.LedgerRow, error) {
	out := make(map[entity.LedgerKey]*entity.LedgerRow, len(keys))
	err := r.store.view(r.tx, func(st *state) error {
		for _, k := range keys {
			out[k] = rowOrZero(st, k)
		}
		return nil
	})
	return out, err
}

func (r *ledgerRepo) Credit(_ context.Context, key entity.LedgerKey, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	var qty decimal.Decimal
	err := r.store.view(r.tx, func(st *state) error {
		row, ok := st.ledger[key]
		if !ok {
			row = &entity.LedgerRow{Key: key, Quantity: decimal.Zero}
			st.ledger[key] = row
		}
		row.Quantity = row.Quantity.Add(amount)
		row.UpdatedAt = r.store.now()
		qty = row.Quantity
		return nil
	})
	return qty, err
}

func (r *ledgerRepo) Debit(_ context.Context, key entity.LedgerKey, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	var qty decimal.Decimal
	err := r.store.view(r.tx, func(st *state) error {
		row, ok := st.ledger[key]
		available := decimal.Zero
		if ok {
			available = row.Quantity
		}
		if available.LessThan(amount) {
			return stockError(key, amount, available)
		}
		row.Quantity = row.Quantity.Sub(amount)
		row.UpdatedAt = r.store.now()
		qty = row.Quantity
		return nil
	})
	return qty, err
}

func (r *ledgerRepo) ListWarehouse(_ context.Context, filter repository.LedgerFilter) ([]*entity.LedgerRow, error) {
	return r.list(func(k entity.LedgerKey) bool {
		return k.IsWarehouse() && (filter.MaterialID == "" || k.MaterialID == filter.MaterialID)
	})
}

func (r *ledgerRepo) ListOutlet(_ context.Context, filter repository.LedgerFilter) ([]*entity.LedgerRow, error) {
	return r.list(func(k entity.LedgerKey) bool {
		return !k.IsWarehouse() &&
			(filter.OutletID == "" || k.OutletID == filter.OutletID) &&
			(filter.MaterialID == "" || k.MaterialID == filter.MaterialID)
	})
}

func (r *ledgerRepo) list(match func(entity.LedgerKey) bool) ([]*entity.LedgerRow, error) {
	var out []*entity.LedgerRow
	err := r.store.view(r.tx, func(st *state) error {
		for k, v := range st.ledger {
			if match(k) {
				row := *v
				out = append(out, &row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out, err
}

func rowOrZero(st *state, key entity.LedgerKey) *entity.LedgerRow {
	if v, ok := st.ledger[key]; ok {
		row := *v
		return &row
	}
	return &entity.LedgerRow{Key: key, Quantity: decimal.Zero}
}

func stockError(key entity.LedgerKey, requested, available decimal.Decimal) error {
	if key.IsWarehouse() {
		return domain.NewWarehouseStockError(key.MaterialID, requested, available)
	}
	return domain.NewOutletStockError(key.OutletID, key.MaterialID, requested, available)
}
