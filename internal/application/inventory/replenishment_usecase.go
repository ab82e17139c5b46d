package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

// listPage tamaño de página al recorrer solicitudes y despachos abiertos.
const listPage = 100

// ReplenishmentUseCase genera la lista de reposición de un outlet: materiales en estado crítico
// con la cantidad sugerida para la próxima solicitud, descontando lo que ya está en camino.
type ReplenishmentUseCase struct {
	ledger     repository.LedgerRepository
	catalog    repository.CatalogRepository
	requests   repository.StockRequestRepository
	dispatches repository.DispatchRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	ledger repository.LedgerRepository,
	catalog repository.CatalogRepository,
	requests repository.StockRequestRepository,
	dispatches repository.DispatchRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		ledger:     ledger,
		catalog:    catalog,
		requests:   requests,
		dispatches: dispatches,
	}
}

// Suggestions devuelve los materiales del outlet en o bajo su mínimo, ordenados por urgencia
// (menor cobertura del mínimo primero). Los materiales sin mínimo configurado se omiten.
func (uc *ReplenishmentUseCase) Suggestions(ctx context.Context, actor entity.Actor, outletID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	if outletID == "" {
		outletID = actor.OutletID
	}
	if outletID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := domain.RequireOutletView(actor, outletID); err != nil {
		return nil, err
	}

	// 1. Catálogo completo: un material nunca recibido cuenta como cero
	materials, err := uc.catalog.ListMaterials(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(materials) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Existencias del outlet y de bodega
	outletRows, err := uc.ledger.ListOutlet(ctx, repository.LedgerFilter{OutletID: outletID})
	if err != nil {
		return nil, err
	}
	warehouseRows, err := uc.ledger.ListWarehouse(ctx, repository.LedgerFilter{})
	if err != nil {
		return nil, err
	}
	outletQty := quantities(outletRows)
	warehouseQty := quantities(warehouseRows)

	// 3. Solicitudes abiertas (pedidas o ya despachadas) y material en tránsito
	pending, err := uc.openRequests(ctx, outletID)
	if err != nil {
		return nil, err
	}
	inTransit, err := uc.inTransit(ctx, outletID)
	if err != nil {
		return nil, err
	}
	for id := range inTransit {
		pending[id] = true
	}

	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for id, m := range materials {
		if !m.OutletMinimum.IsPositive() {
			continue
		}
		current := outletQty[id]
		if inventory.StockStatus(current, m.OutletMinimum) != entity.StockStatusCritical {
			continue
		}
		ideal := m.OutletMinimum.Mul(factor)
		suggested := ideal.Sub(current).Sub(inTransit[id]).RoundUp(inventory.QuantityScale)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			OutletID:     outletID,
			MaterialID:   id,
			MaterialName: m.Name,
			Unit:         m.Unit,
			CurrentStock: current,
			Minimum:      m.OutletMinimum,
			IdealStock:   ideal,
			SuggestedQty: suggested,
			InTransitQty: inTransit[id],
			WarehouseQty: warehouseQty[id],
			Pending:      pending[id],
		})
	}

	// 4. Ordenar por cobertura (existencia / mínimo) ascendente; empate por material
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ca := a.CurrentStock.Div(a.Minimum)
		cb := b.CurrentStock.Div(b.Minimum)
		if !ca.Equal(cb) {
			return ca.LessThan(cb)
		}
		return a.MaterialID < b.MaterialID
	})

	// 5. Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func quantities(rows []*entity.LedgerRow) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.Key.MaterialID] = r.Quantity
	}
	return out
}

// openRequests materiales con una solicitud del outlet sin cerrar.
func (uc *ReplenishmentUseCase) openRequests(ctx context.Context, outletID string) (map[string]bool, error) {
	open := make(map[string]bool)
	for _, status := range []string{entity.RequestStatusRequested, entity.RequestStatusDispatched} {
		for offset := 0; ; offset += listPage {
			page, err := uc.requests.List(ctx, repository.StockRequestFilter{OutletID: outletID, Status: status}, listPage, offset)
			if err != nil {
				return nil, err
			}
			for _, r := range page {
				open[r.MaterialID] = true
			}
			if len(page) < listPage {
				break
			}
		}
	}
	return open, nil
}

// inTransit suma por material los despachos enviados al outlet y aún no recibidos.
func (uc *ReplenishmentUseCase) inTransit(ctx context.Context, outletID string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for offset := 0; ; offset += listPage {
		page, err := uc.dispatches.List(ctx, repository.DispatchFilter{OutletID: outletID, Status: entity.DispatchStatusSent}, listPage, offset)
		if err != nil {
			return nil, err
		}
		for _, d := range page {
			out[d.MaterialID] = out[d.MaterialID].Add(d.Quantity)
		}
		if len(page) < listPage {
			break
		}
	}
	return out, nil
}
