package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// ── Intakes ──────────────────────────────────────────────────────────────────

type intakeRepo struct {
	store *Store
	tx    *state
}

func (r *intakeRepo) Create(_ context.Context, intake *entity.Intake) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.intakes[intake.ID]; ok {
			return fmt.Errorf("intake %s: %w", intake.ID, domain.ErrConflict)
		}
		st.intakes[intake.ID] = copyIntake(intake)
		return nil
	})
}

func (r *intakeRepo) Update(_ context.Context, intake *entity.Intake) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.intakes[intake.ID]; !ok {
			return domain.ErrNotFound
		}
		st.intakes[intake.ID] = copyIntake(intake)
		return nil
	})
}

func (r *intakeRepo) Delete(_ context.Context, id string) error {
	return r.store.view(r.tx, func(st *state) error {
		delete(st.intakes, id)
		return nil
	})
}

func (r *intakeRepo) GetByID(_ context.Context, id string) (*entity.Intake, error) {
	var out *entity.Intake
	err := r.store.view(r.tx, func(st *state) error {
		if v, ok := st.intakes[id]; ok {
			out = copyIntake(v)
		}
		return nil
	})
	return out, err
}

func (r *intakeRepo) GetForUpdate(ctx context.Context, id string) (*entity.Intake, error) {
	return r.GetByID(ctx, id)
}

func (r *intakeRepo) List(_ context.Context, materialID string, limit, offset int) ([]*entity.Intake, error) {
	var out []*entity.Intake
	err := r.store.view(r.tx, func(st *state) error {
		for _, v := range st.intakes {
			if materialID == "" || v.MaterialID == materialID {
				out = append(out, copyIntake(v))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	return paginate(out, limit, offset), err
}

// ── Stock requests ───────────────────────────────────────────────────────────

type requestRepo struct {
	store *Store
	tx    *state
}

func (r *requestRepo) Create(_ context.Context, req *entity.StockRequest) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.requests[req.ID]; ok {
			return fmt.Errorf("request %s: %w", req.ID, domain.ErrConflict)
		}
		st.requests[req.ID] = copyRequest(req)
		return nil
	})
}

func (r *requestRepo) Update(_ context.Context, req *entity.StockRequest) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.requests[req.ID]; !ok {
			return domain.ErrNotFound
		}
		st.requests[req.ID] = copyRequest(req)
		return nil
	})
}

func (r *requestRepo) GetByID(_ context.Context, id string) (*entity.StockRequest, error) {
	var out *entity.StockRequest
	err := r.store.view(r.tx, func(st *state) error {
		if v, ok := st.requests[id]; ok {
			out = copyRequest(v)
		}
		return nil
	})
	return out, err
}

func (r *requestRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *requestRepo) List(_ context.Context, filter repository.StockRequestFilter, limit, offset int) ([]*entity.StockRequest, error) {
	var out []*entity.StockRequest
	err := r.store.view(r.tx, func(st *state) error {
		for _, v := range st.requests {
			if (filter.OutletID == "" || v.OutletID == filter.OutletID) && (filter.Status == "" || v.Status == filter.Status) {
				out = append(out, copyRequest(v))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), err
}

// ── Dispatches ───────────────────────────────────────────────────────────────

type dispatchRepo struct {
	store *Store
	tx    *state
}

func (r *dispatchRepo) Create(_ context.Context, d *entity.Dispatch) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.dispatches[d.ID]; ok {
			return fmt.Errorf("dispatch %s: %w", d.ID, domain.ErrConflict)
		}
		if d.RequestID != "" {
			for _, other := range st.dispatches {
				if other.RequestID == d.RequestID {
					return fmt.Errorf("request %s ya tiene despacho: %w", d.RequestID, domain.ErrConflict)
				}
			}
		}
		st.dispatches[d.ID] = copyDispatch(d)
		return nil
	})
}

func (r *dispatchRepo) Update(_ context.Context, d *entity.Dispatch) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.dispatches[d.ID]; !ok {
			return domain.ErrNotFound
		}
		st.dispatches[d.ID] = copyDispatch(d)
		return nil
	})
}

func (r *dispatchRepo) Delete(_ context.Context, id string) error {
	return r.store.view(r.tx, func(st *state) error {
		delete(st.dispatches, id)
		return nil
	})
}

func (r *dispatchRepo) GetByID(_ context.Context, id string) (*entity.Dispatch, error) {
	var out *entity.Dispatch
	err := r.store.view(r.tx, func(st *state) error {
		if v, ok := st.dispatches[id]; ok {
			out = copyDispatch(v)
		}
		return nil
	})
	return out, err
}

func (r *dispatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Dispatch, error) {
	return r.GetByID(ctx, id)
}

func (r *dispatchRepo) List(_ context.Context, filter repository.DispatchFilter, limit, offset int) ([]*entity.Dispatch, error) {
	var out []*entity.Dispatch
	err := r.store.view(r.tx, func(st *state) error {
		for _, v := range st.dispatches {
			if (filter.OutletID == "" || v.OutletID == filter.OutletID) && (filter.Status == "" || v.Status == filter.Status) {
				out = append(out, copyDispatch(v))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), err
}
