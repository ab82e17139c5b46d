package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

type saleRepo struct {
	store *Store
	tx    *state
}

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return fmt.Errorf("sale %s: %w", sale.ID, domain.ErrConflict)
		}
		st.sales[sale.ID] = copySale(sale)
		return nil
	})
}

func (r *saleRepo) Replace(_ context.Context, sale *entity.Sale) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.sales[sale.ID]; !ok {
			return domain.ErrNotFound
		}
		st.sales[sale.ID] = copySale(sale)
		return nil
	})
}

func (r *saleRepo) Delete(_ context.Context, id string) error {
	return r.store.view(r.tx, func(st *state) error {
		delete(st.sales, id)
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.store.view(r.tx, func(st *state) error {
		if v, ok := st.sales[id]; ok {
			out = copySale(v)
		}
		return nil
	})
	return out, err
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) ListByOutlet(_ context.Context, outletID string, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.store.view(r.tx, func(st *state) error {
		for _, v := range st.sales {
			if v.OutletID == outletID {
				out = append(out, copySale(v))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SoldAt.After(out[j].SoldAt) })
	return paginate(out, limit, offset), err
}

type revenueRepo struct {
	store *Store
	tx    *state
}

func (r *revenueRepo) Add(_ context.Context, outletID string, day time.Time, amount decimal.Decimal, salesDelta int64) error {
	key := revenueKey{outletID: outletID, day: day.Format(time.DateOnly)}
	return r.store.view(r.tx, func(st *state) error {
		row, ok := st.revenue[key]
		if !ok {
			row = &entity.DailyRevenue{OutletID: outletID, Day: day, Total: decimal.Zero}
			st.revenue[key] = row
		}
		row.Total = row.Total.Add(amount)
		row.SalesCount += salesDelta
		return nil
	})
}

func (r *revenueRepo) Get(_ context.Context, outletID string, day time.Time) (*entity.DailyRevenue, error) {
	var out *entity.DailyRevenue
	err := r.store.view(r.tx, func(st *state) error {
		if v, ok := st.revenue[revenueKey{outletID: outletID, day: day.Format(time.DateOnly)}]; ok {
			c := *v
			out = &c
		}
		return nil
	})
	return out, err
}
