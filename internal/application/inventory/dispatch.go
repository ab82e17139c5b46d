package inventory

import (
	"context"
	"errors"
	"fmt"
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

const dispatchProofFolder = "dispatch-proofs"

// DispatchUseCase despachos bodega → outlet: creación (débito bodega), recepción (crédito outlet),
// enmienda y eliminación como transacciones compensatorias.
type DispatchUseCase struct {
	txRunner   TxRunner
	dispatches repository.DispatchRepository
	catalog    repository.CatalogRepository
	storage    ports.ObjectStorage
	notes      ports.DeliveryNoteRenderer
	events     ports.EventPublisher
	log        zerolog.Logger
}

// NewDispatchUseCase construye el caso de uso. storage y notes pueden ser nil.
func NewDispatchUseCase(
	txRunner TxRunner,
	dispatches repository.DispatchRepository,
	catalog repository.CatalogRepository,
	storage ports.ObjectStorage,
	notes ports.DeliveryNoteRenderer,
	events ports.EventPublisher,
	log zerolog.Logger,
) *DispatchUseCase {
	return &DispatchUseCase{
		txRunner:   txRunner,
		dispatches: dispatches,
		catalog:    catalog,
		storage:    storage,
		notes:      notes,
		events:     events,
		log:        log.With().Str("component", "dispatch").Logger(),
	}
}

// Create debita la bodega y registra el despacho en estado sent. Si atiende una solicitud,
// ésta pasa a dispatched en la misma transacción.
func (uc *DispatchUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateDispatchRequest) (*dto.DispatchResponse, error) {
	if err := domain.RequireWarehouse(actor); err != nil {
		return nil, err
	}
	if in.RequestID == "" {
		if in.MaterialID == "" || in.OutletID == "" || !inventory.ValidQuantity(in.Quantity) {
			return nil, domain.ErrInvalidInput
		}
	} else if !in.Quantity.IsZero() && !inventory.ValidQuantity(in.Quantity) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	d := &entity.Dispatch{
		ID:           uuid.New().String(),
		MaterialID:   in.MaterialID,
		OutletID:     in.OutletID,
		RequestID:    in.RequestID,
		Quantity:     in.Quantity,
		Status:       entity.DispatchStatusSent,
		DispatchedBy: actor.ID,
		DispatchedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.txRunner.Run(ctx, func(s Stores) error {
		var req *entity.StockRequest
		if d.RequestID != "" {
			var err error
			req, err = s.Requests.GetForUpdate(ctx, d.RequestID)
			if err != nil {
				return err
			}
			if req == nil {
				return domain.ErrNotFound
			}
			if err := requirePending(req); err != nil {
				return err
			}
			if (d.MaterialID != "" && d.MaterialID != req.MaterialID) || (d.OutletID != "" && d.OutletID != req.OutletID) {
				return domain.ErrInvalidInput
			}
			d.MaterialID, d.OutletID = req.MaterialID, req.OutletID
			if d.Quantity.IsZero() {
				d.Quantity = req.Quantity
			}
		}
		if err := requireOutlet(ctx, s.Catalog, d.OutletID); err != nil {
			return err
		}
		if err := requireMaterial(ctx, s.Catalog, d.MaterialID); err != nil {
			return err
		}
		if err := PostLedger(ctx, s.Ledger, d.Postings()); err != nil {
			return err
		}
		if err := s.Dispatches.Create(ctx, d); err != nil {
			return err
		}
		if req == nil {
			return nil
		}
		req.Status = entity.RequestStatusDispatched
		req.ApprovedBy = actor.ID
		req.UpdatedAt = now
		return s.Requests.Update(ctx, req)
	})
	if err != nil {
		LogFailure(uc.log, "create_dispatch", err)
		return nil, err
	}
	uc.log.Info().Str("dispatch_id", d.ID).Str("outlet_id", d.OutletID).Str("material_id", d.MaterialID).
		Str("quantity", d.Quantity.String()).Str("request_id", d.RequestID).Msg("despacho creado")
	Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventDispatchCreated, EntityID: d.ID, OutletID: d.OutletID, ActorID: actor.ID, Postings: d.Postings(),
	})
	return toDispatchResponse(d), nil
}

// Receive confirma la recepción: acredita el outlet y, si aplica, cierra la solicitud vinculada.
// El comprobante (opcional) se sube antes de abrir la transacción.
func (uc *DispatchUseCase) Receive(ctx context.Context, actor entity.Actor, id string, proof []byte) (*dto.DispatchResponse, error) {
	current, err := uc.dispatches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if err := checkReceivable(actor, current); err != nil {
		LogFailure(uc.log, "receive_dispatch", err)
		return nil, err
	}

	proofURL := ""
	if len(proof) > 0 && uc.storage != nil {
		proofURL, err = uc.storage.Upload(ctx, dispatchProofFolder, proof)
		if err != nil {
			if !errors.Is(err, domain.ErrUploadFailed) && !errors.Is(err, domain.ErrInvalidInput) {
				err = fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
			}
			LogFailure(uc.log, "receive_dispatch", err)
			return nil, err
		}
	}

	var d *entity.Dispatch
	err = uc.txRunner.Run(ctx, func(s Stores) error {
		var err error
		d, err = s.Dispatches.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if err := checkReceivable(actor, d); err != nil {
			return err
		}
		var req *entity.StockRequest
		if d.RequestID != "" {
			if req, err = s.Requests.GetForUpdate(ctx, d.RequestID); err != nil {
				return err
			}
		}
		if err := PostLedger(ctx, s.Ledger, []entity.LedgerPosting{
			entity.Credit(entity.OutletKey(d.OutletID, d.MaterialID), d.Quantity),
		}); err != nil {
			return err
		}
		now := time.Now()
		d.Status = entity.DispatchStatusReceived
		d.ReceivedBy = actor.ID
		d.ReceivedAt = &now
		d.UpdatedAt = now
		if proofURL != "" {
			d.ProofURL = proofURL
		}
		if err := s.Dispatches.Update(ctx, d); err != nil {
			return err
		}
		if req == nil || req.IsFinal() {
			return nil
		}
		req.Status = entity.RequestStatusReceived
		req.UpdatedAt = now
		return s.Requests.Update(ctx, req)
	})
	if err != nil {
		LogFailure(uc.log, "receive_dispatch", err)
		return nil, err
	}
	uc.log.Info().Str("dispatch_id", d.ID).Str("outlet_id", d.OutletID).Str("material_id", d.MaterialID).
		Str("quantity", d.Quantity.String()).Bool("proof", d.ProofURL != "").Msg("despacho recibido")
	Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventDispatchReceived, EntityID: d.ID, OutletID: d.OutletID, ActorID: actor.ID,
		Postings: []entity.LedgerPosting{entity.Credit(entity.OutletKey(d.OutletID, d.MaterialID), d.Quantity)},
	})
	return toDispatchResponse(d), nil
}

// Amend corrige material y/o cantidad: revierte el efecto aplicado y aplica el nuevo en una transacción.
// Un despacho que atiende una solicitud no puede cambiar de material.
func (uc *DispatchUseCase) Amend(ctx context.Context, actor entity.Actor, id string, in dto.AmendDispatchRequest) (*dto.DispatchResponse, error) {
	if err := domain.RequireWarehouse(actor); err != nil {
		return nil, err
	}
	if in.Quantity != nil && !inventory.ValidQuantity(*in.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	if in.MaterialID != nil && *in.MaterialID == "" {
		return nil, domain.ErrInvalidInput
	}

	var (
		d        *entity.Dispatch
		postings []entity.LedgerPosting
	)
	err := uc.txRunner.Run(ctx, func(s Stores) error {
		var err error
		d, err = s.Dispatches.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		before := d.Postings()
		if in.MaterialID != nil && *in.MaterialID != d.MaterialID {
			if d.RequestID != "" {
				return domain.ErrConflict
			}
			if err := requireMaterial(ctx, s.Catalog, *in.MaterialID); err != nil {
				return err
			}
			d.MaterialID = *in.MaterialID
		}
		if in.Quantity != nil {
			d.Quantity = *in.Quantity
		}
		postings = append(inventory.Reverse(before), d.Postings()...)
		if err := PostLedger(ctx, s.Ledger, postings); err != nil {
			return err
		}
		d.UpdatedAt = time.Now()
		return s.Dispatches.Update(ctx, d)
	})
	if err != nil {
		LogFailure(uc.log, "amend_dispatch", err)
		return nil, err
	}
	uc.log.Info().Str("dispatch_id", d.ID).Str("material_id", d.MaterialID).
		Str("quantity", d.Quantity.String()).Str("status", d.Status).Msg("despacho enmendado")
	Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventDispatchAmended, EntityID: d.ID, OutletID: d.OutletID, ActorID: actor.ID, Postings: postings,
	})
	return toDispatchResponse(d), nil
}

// Delete elimina un despacho revirtiendo exactamente el efecto aplicado según su estado.
// Si atendía una solicitud, ésta vuelve a requested y puede despacharse de nuevo.
func (uc *DispatchUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if err := domain.RequireWarehouse(actor); err != nil {
		return err
	}
	var (
		d        *entity.Dispatch
		postings []entity.LedgerPosting
	)
	err := uc.txRunner.Run(ctx, func(s Stores) error {
		var err error
		d, err = s.Dispatches.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		postings = inventory.Reverse(d.Postings())
		if err := PostLedger(ctx, s.Ledger, postings); err != nil {
			return err
		}
		if err := s.Dispatches.Delete(ctx, id); err != nil {
			return err
		}
		if d.RequestID == "" {
			return nil
		}
		req, err := s.Requests.GetForUpdate(ctx, d.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return nil
		}
		req.Status = entity.RequestStatusRequested
		req.ApprovedBy = ""
		req.UpdatedAt = time.Now()
		return s.Requests.Update(ctx, req)
	})
	if err != nil {
		LogFailure(uc.log, "delete_dispatch", err)
		return err
	}
	uc.log.Info().Str("dispatch_id", id).Str("status", d.Status).Msg("despacho eliminado")
	Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventDispatchDeleted, EntityID: id, OutletID: d.OutletID, ActorID: actor.ID, Postings: postings,
	})
	return nil
}

// GetByID obtiene un despacho visible para el actor.
func (uc *DispatchUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.DispatchResponse, error) {
	d, err := uc.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toDispatchResponse(d), nil
}

// List lista despachos. El personal de outlet sólo ve los dirigidos a su outlet.
func (uc *DispatchUseCase) List(ctx context.Context, actor entity.Actor, in dto.DispatchFilter, limit, offset int) (*dto.DispatchListResponse, error) {
	outletID, err := scopeOutlet(actor, in.OutletID)
	if err != nil {
		return nil, err
	}
	limit, offset = page(limit, offset)
	list, err := uc.dispatches.List(ctx, repository.DispatchFilter{OutletID: outletID, Status: in.Status}, limit+1, offset)
	if err != nil {
		return nil, err
	}
	list, pageInfo := dto.TrimPage(list, limit, offset)
	items := make([]dto.DispatchResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDispatchResponse(d))
	}
	return &dto.DispatchListResponse{Items: items, Page: pageInfo}, nil
}

// DeliveryNote genera el PDF de la nota de entrega.
func (uc *DispatchUseCase) DeliveryNote(ctx context.Context, actor entity.Actor, id string) ([]byte, error) {
	if uc.notes == nil {
		return nil, fmt.Errorf("generador de notas de entrega no configurado")
	}
	d, err := uc.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	material, err := uc.catalog.GetMaterial(ctx, d.MaterialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.MissingCatalog("material", d.MaterialID)
	}
	return uc.notes.RenderDeliveryNote(ctx, d, material)
}

func (uc *DispatchUseCase) visible(ctx context.Context, actor entity.Actor, id string) (*entity.Dispatch, error) {
	d, err := uc.dispatches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	if err := domain.RequireOutletView(actor, d.OutletID); err != nil {
		return nil, err
	}
	return d, nil
}

func checkReceivable(actor entity.Actor, d *entity.Dispatch) error {
	if err := domain.RequireOutletOperator(actor, d.OutletID); err != nil {
		return err
	}
	if d.IsReceived() {
		return domain.ErrAlreadyReceived
	}
	return nil
}
