package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/application/ports"
	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

// RequestUseCase flujo de solicitudes de stock: requested → approved|dispatched → received.
type RequestUseCase struct {
	txRunner TxRunner
	requests repository.StockRequestRepository
	events   ports.EventPublisher
	log      zerolog.Logger
}

// NewRequestUseCase construye el caso de uso.
func NewRequestUseCase(
	txRunner TxRunner,
	requests repository.StockRequestRepository,
	events ports.EventPublisher,
	log zerolog.Logger,
) *RequestUseCase {
	return &RequestUseCase{
		txRunner: txRunner,
		requests: requests,
		events:   events,
		log:      log.With().Str("component", "stock_request").Logger(),
	}
}

// Create registra la solicitud de un outlet. El outlet es siempre el del actor.
func (uc *RequestUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateStockRequestRequest) (*dto.StockRequestResponse, error) {
	if !actor.IsOutletStaff() {
		return nil, domain.ErrForbidden
	}
	if in.OutletID != "" && in.OutletID != actor.OutletID {
		return nil, domain.ErrForbiddenOutletMismatch
	}
	if in.MaterialID == "" || !inventory.ValidQuantity(in.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	req := &entity.StockRequest{
		ID:          uuid.New().String(),
		OutletID:    actor.OutletID,
		MaterialID:  in.MaterialID,
		Quantity:    in.Quantity,
		Status:      entity.RequestStatusRequested,
		RequestedBy: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.txRunner.Run(ctx, func(s Stores) error {
		if err := requireOutlet(ctx, s.Catalog, req.OutletID); err != nil {
			return err
		}
		if err := requireMaterial(ctx, s.Catalog, req.MaterialID); err != nil {
			return err
		}
		return s.Requests.Create(ctx, req)
	})
	if err != nil {
		LogFailure(uc.log, "create_request", err)
		return nil, err
	}
	uc.log.Info().Str("request_id", req.ID).Str("outlet_id", req.OutletID).Str("material_id", req.MaterialID).
		Str("quantity", req.Quantity.String()).Msg("solicitud creada")
	Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventRequestCreated, EntityID: req.ID, OutletID: req.OutletID, ActorID: actor.ID, OccurredAt: now,
	})
	return toStockRequestResponse(req), nil
}

// Approve aprobación directa: debita la bodega y acredita el outlet en una sola transacción.
func (uc *RequestUseCase) Approve(ctx context.Context, actor entity.Actor, id string) (*dto.StockRequestResponse, error) {
	if err := domain.RequireWarehouse(actor); err != nil {
		return nil, err
	}
	var (
		req      *entity.StockRequest
		postings []entity.LedgerPosting
	)
	err := uc.txRunner.Run(ctx, func(s Stores) error {
		var err error
		req, err = s.Requests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if err := requirePending(req); err != nil {
			return err
		}
		postings = []entity.LedgerPosting{
			entity.Debit(entity.WarehouseKey(req.MaterialID), req.Quantity),
			entity.Credit(entity.OutletKey(req.OutletID, req.MaterialID), req.Quantity),
		}
		if err := PostLedger(ctx, s.Ledger, postings); err != nil {
			return err
		}
		req.Status = entity.RequestStatusApproved
		req.ApprovedBy = actor.ID
		req.UpdatedAt = time.Now()
		return s.Requests.Update(ctx, req)
	})
	if err != nil {
		LogFailure(uc.log, "approve_request", err)
		return nil, err
	}
	uc.log.Info().Str("request_id", req.ID).Str("outlet_id", req.OutletID).Str("material_id", req.MaterialID).
		Str("quantity", req.Quantity.String()).Msg("solicitud aprobada")
	Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventRequestApproved, EntityID: req.ID, OutletID: req.OutletID, ActorID: actor.ID, Postings: postings,
	})
	return toStockRequestResponse(req), nil
}

// Receive cierra una solicitud aprobada directamente. No mueve ledgers: ya se movieron al aprobar.
// Las solicitudes atendidas por despacho se cierran al confirmar la recepción del despacho.
func (uc *RequestUseCase) Receive(ctx context.Context, actor entity.Actor, id string) (*dto.StockRequestResponse, error) {
	var req *entity.StockRequest
	err := uc.txRunner.Run(ctx, func(s Stores) error {
		var err error
		req, err = s.Requests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if err := domain.RequireOutletOperator(actor, req.OutletID); err != nil {
			return err
		}
		switch req.Status {
		case entity.RequestStatusReceived:
			return domain.ErrRequestAlreadyFinalized
		case entity.RequestStatusApproved:
		default:
			return domain.ErrConflict
		}
		req.Status = entity.RequestStatusReceived
		req.UpdatedAt = time.Now()
		return s.Requests.Update(ctx, req)
	})
	if err != nil {
		LogFailure(uc.log, "receive_request", err)
		return nil, err
	}
	uc.log.Info().Str("request_id", req.ID).Str("outlet_id", req.OutletID).Msg("solicitud recibida")
	Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventRequestReceived, EntityID: req.ID, OutletID: req.OutletID, ActorID: actor.ID,
	})
	return toStockRequestResponse(req), nil
}

// GetByID obtiene una solicitud visible para el actor.
func (uc *RequestUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.StockRequestResponse, error) {
	req, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if err := domain.RequireOutletView(actor, req.OutletID); err != nil {
		return nil, err
	}
	return toStockRequestResponse(req), nil
}

// List lista solicitudes. El personal de outlet sólo ve las de su outlet.
func (uc *RequestUseCase) List(ctx context.Context, actor entity.Actor, in dto.StockRequestFilter, limit, offset int) (*dto.StockRequestListResponse, error) {
	outletID, err := scopeOutlet(actor, in.OutletID)
	if err != nil {
		return nil, err
	}
	limit, offset = page(limit, offset)
	list, err := uc.requests.List(ctx, repository.StockRequestFilter{OutletID: outletID, Status: in.Status}, limit+1, offset)
	if err != nil {
		return nil, err
	}
	list, pageInfo := dto.TrimPage(list, limit, offset)
	items := make([]dto.StockRequestResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toStockRequestResponse(r))
	}
	return &dto.StockRequestListResponse{Items: items, Page: pageInfo}, nil
}

// requirePending sólo una solicitud en estado requested admite aprobación o despacho.
func requirePending(req *entity.StockRequest) error {
	switch {
	case req.IsPending():
		return nil
	case req.IsFinal():
		return domain.ErrRequestAlreadyFinalized
	default:
		return domain.ErrRequestAlreadyProcessed
	}
}

// scopeOutlet resuelve el outlet de un listado: el personal de outlet queda fijado al suyo.
func scopeOutlet(actor entity.Actor, outletID string) (string, error) {
	if actor.IsOutletStaff() {
		if outletID != "" && outletID != actor.OutletID {
			return "", domain.ErrForbiddenOutletMismatch
		}
		return actor.OutletID, nil
	}
	if !actor.IsWarehouse() && !actor.HasOversight() {
		return "", domain.ErrForbidden
	}
	return outletID, nil
}
