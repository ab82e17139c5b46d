package inventory

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

// StockQueryUseCase lectura de los ledgers con estado frente al mínimo de cada material.
type StockQueryUseCase struct {
	ledger  repository.LedgerRepository
	catalog repository.CatalogRepository
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(ledger repository.LedgerRepository, catalog repository.CatalogRepository) *StockQueryUseCase {
	return &StockQueryUseCase{ledger: ledger, catalog: catalog}
}

// Warehouse lista el ledger de bodega. Sólo bodega, owner y supervisor.
func (uc *StockQueryUseCase) Warehouse(ctx context.Context, actor entity.Actor, q dto.StockQuery) (*dto.StockListResponse, error) {
	if !actor.IsWarehouse() && !actor.HasOversight() {
		return nil, domain.ErrForbidden
	}
	rows, err := uc.ledger.ListWarehouse(ctx, repository.LedgerFilter{MaterialID: q.MaterialID})
	if err != nil {
		return nil, err
	}
	return uc.build(ctx, rows, q.CriticalOnly)
}

// Outlet lista el ledger de outlets. El personal de outlet queda fijado al suyo.
func (uc *StockQueryUseCase) Outlet(ctx context.Context, actor entity.Actor, q dto.StockQuery) (*dto.StockListResponse, error) {
	outletID, err := scopeOutlet(actor, q.OutletID)
	if err != nil {
		return nil, err
	}
	rows, err := uc.ledger.ListOutlet(ctx, repository.LedgerFilter{OutletID: outletID, MaterialID: q.MaterialID})
	if err != nil {
		return nil, err
	}
	return uc.build(ctx, rows, q.CriticalOnly)
}

func (uc *StockQueryUseCase) build(ctx context.Context, rows []*entity.LedgerRow, criticalOnly bool) (*dto.StockListResponse, error) {
	materials, err := uc.catalog.ListMaterials(ctx, materialIDs(rows))
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockRowResponse, 0, len(rows))
	for _, r := range rows {
		item := dto.StockRowResponse{
			OutletID:   r.Key.OutletID,
			MaterialID: r.Key.MaterialID,
			Quantity:   r.Quantity,
			UpdatedAt:  r.UpdatedAt,
		}
		if m, ok := materials[r.Key.MaterialID]; ok {
			item.MaterialName = m.Name
			item.Unit = m.Unit
			item.Minimum = m.MinimumFor(r.Key)
		}
		item.Status = inventory.StockStatus(item.Quantity, item.Minimum)
		if criticalOnly && item.Status != entity.StockStatusCritical {
			continue
		}
		items = append(items, item)
	}
	return &dto.StockListResponse{Items: items}, nil
}

func materialIDs(rows []*entity.LedgerRow) []string {
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.Key.MaterialID]; ok {
			continue
		}
		seen[r.Key.MaterialID] = struct{}{}
		ids = append(ids, r.Key.MaterialID)
	}
	return ids
}
