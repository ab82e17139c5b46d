package inventory

import (
	"context"
	"strings"
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

// IntakeUseCase recepciones de proveedor en la bodega central.
type IntakeUseCase struct {
	txRunner TxRunner
	intakes  repository.IntakeRepository
	events   ports.EventPublisher
	log      zerolog.Logger
}

// NewIntakeUseCase construye el caso de uso.
func NewIntakeUseCase(
	txRunner TxRunner,
	intakes repository.IntakeRepository,
	events ports.EventPublisher,
	log zerolog.Logger,
) *IntakeUseCase {
	return &IntakeUseCase{
		txRunner: txRunner,
		intakes:  intakes,
		events:   events,
		log:      log.With().Str("component", "intake").Logger(),
	}
}

// Record registra la recepción y acredita la bodega por exactamente la cantidad persistida.
func (uc *IntakeUseCase) Record(ctx context.Context, actor entity.Actor, in dto.RecordIntakeRequest) (*dto.IntakeResponse, error) {
	if err := domain.RequireWarehouse(actor); err != nil {
		return nil, err
	}
	supplier := strings.TrimSpace(in.Supplier)
	if in.MaterialID == "" || supplier == "" || !inventory.ValidQuantity(in.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	receivedAt := now
	if in.ReceivedAt != nil {
		receivedAt = *in.ReceivedAt
	}
	intake := &entity.Intake{
		ID:         uuid.New().String(),
		MaterialID: in.MaterialID,
		Quantity:   in.Quantity,
		Supplier:   supplier,
		ReceivedAt: receivedAt,
		CreatedBy:  actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	postings := []entity.LedgerPosting{entity.Credit(entity.WarehouseKey(intake.MaterialID), intake.Quantity)}

	err := uc.txRunner.Run(ctx, func(s Stores) error {
		if err := requireMaterial(ctx, s.Catalog, intake.MaterialID); err != nil {
			return err
		}
		if err := s.Intakes.Create(ctx, intake); err != nil {
			return err
		}
		return PostLedger(ctx, s.Ledger, postings)
	})
	if err != nil {
		LogFailure(uc.log, "record_intake", err)
		return nil, err
	}

	uc.log.Info().Str("intake_id", intake.ID).Str("material_id", intake.MaterialID).
		Str("quantity", intake.Quantity.String()).Msg("recepción registrada")
	Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventIntakeRecorded, EntityID: intake.ID, ActorID: actor.ID, Postings: postings, OccurredAt: now,
	})
	return toIntakeResponse(intake), nil
}

// Update corrige una recepción: revierte el crédito anterior y aplica el nuevo en la misma transacción.
func (uc *IntakeUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateIntakeRequest) (*dto.IntakeResponse, error) {
	if err := domain.RequireWarehouse(actor); err != nil {
		return nil, err
	}
	if in.Quantity != nil && !inventory.ValidQuantity(*in.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	if in.Supplier != nil && strings.TrimSpace(*in.Supplier) == "" {
		return nil, domain.ErrInvalidInput
	}

	var (
		intake   *entity.Intake
		postings []entity.LedgerPosting
	)
	err := uc.txRunner.Run(ctx, func(s Stores) error {
		var err error
		intake, err = s.Intakes.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if intake == nil {
			return domain.ErrNotFound
		}
		key := entity.WarehouseKey(intake.MaterialID)
		if in.Quantity != nil && !in.Quantity.Equal(intake.Quantity) {
			postings = []entity.LedgerPosting{
				entity.Debit(key, intake.Quantity),
				entity.Credit(key, *in.Quantity),
			}
			intake.Quantity = *in.Quantity
		}
		if in.Supplier != nil {
			intake.Supplier = strings.TrimSpace(*in.Supplier)
		}
		if in.ReceivedAt != nil {
			intake.ReceivedAt = *in.ReceivedAt
		}
		intake.UpdatedAt = time.Now()
		if err := PostLedger(ctx, s.Ledger, postings); err != nil {
			return err
		}
		return s.Intakes.Update(ctx, intake)
	})
	if err != nil {
		LogFailure(uc.log, "update_intake", err)
		return nil, err
	}

	uc.log.Info().Str("intake_id", intake.ID).Str("quantity", intake.Quantity.String()).Msg("recepción corregida")
	Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventIntakeCorrected, EntityID: intake.ID, ActorID: actor.ID, Postings: postings,
	})
	return toIntakeResponse(intake), nil
}

// Delete elimina la recepción revirtiendo su crédito. Falla si la bodega ya no tiene esa cantidad.
func (uc *IntakeUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if err := domain.RequireWarehouse(actor); err != nil {
		return err
	}
	var postings []entity.LedgerPosting
	err := uc.txRunner.Run(ctx, func(s Stores) error {
		intake, err := s.Intakes.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if intake == nil {
			return domain.ErrNotFound
		}
		postings = []entity.LedgerPosting{entity.Debit(entity.WarehouseKey(intake.MaterialID), intake.Quantity)}
		if err := PostLedger(ctx, s.Ledger, postings); err != nil {
			return err
		}
		return s.Intakes.Delete(ctx, id)
	})
	if err != nil {
		LogFailure(uc.log, "delete_intake", err)
		return err
	}
	uc.log.Info().Str("intake_id", id).Msg("recepción eliminada")
	Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventIntakeDeleted, EntityID: id, ActorID: actor.ID, Postings: postings,
	})
	return nil
}

// GetByID obtiene una recepción.
func (uc *IntakeUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.IntakeResponse, error) {
	if !actor.IsWarehouse() && !actor.HasOversight() {
		return nil, domain.ErrForbidden
	}
	intake, err := uc.intakes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if intake == nil {
		return nil, domain.ErrNotFound
	}
	return toIntakeResponse(intake), nil
}

// List lista recepciones, opcionalmente de un material.
func (uc *IntakeUseCase) List(ctx context.Context, actor entity.Actor, materialID string, limit, offset int) (*dto.IntakeListResponse, error) {
	if !actor.IsWarehouse() && !actor.HasOversight() {
		return nil, domain.ErrForbidden
	}
	limit, offset = page(limit, offset)
	list, err := uc.intakes.List(ctx, materialID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	list, pageInfo := dto.TrimPage(list, limit, offset)
	items := make([]dto.IntakeResponse, 0, len(list))
	for _, i := range list {
		items = append(items, *toIntakeResponse(i))
	}
	return &dto.IntakeListResponse{Items: items, Page: pageInfo}, nil
}
