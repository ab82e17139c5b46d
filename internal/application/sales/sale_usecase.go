package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	appinventory "github.com/jhoicas/stock-outlets-api/internal/application/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/application/ports"
	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

const paymentProofFolder = "payment-proofs"

// SaleUseCase motor de consumo por ventas: cada venta debita del ledger del outlet el material
// que exige su BOM, en la misma transacción que la persiste.
type SaleUseCase struct {
	txRunner SalesTxRunner
	sales    repository.SaleRepository
	revenue  repository.RevenueRepository
	storage  ports.ObjectStorage
	events   ports.EventPublisher
	log      zerolog.Logger
}

// NewSaleUseCase construye el caso de uso. storage puede ser nil.
func NewSaleUseCase(
	txRunner SalesTxRunner,
	sales repository.SaleRepository,
	revenue repository.RevenueRepository,
	storage ports.ObjectStorage,
	events ports.EventPublisher,
	log zerolog.Logger,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner: txRunner,
		sales:    sales,
		revenue:  revenue,
		storage:  storage,
		events:   events,
		log:      log.With().Str("component", "sales").Logger(),
	}
}

// Create valida y debita el consumo agregado de todas las líneas; si algún material no alcanza
// no se escribe nada. proof sólo aplica a pagos qris.
func (uc *SaleUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateSaleRequest, proof []byte) (*dto.SaleResponse, error) {
	if !actor.IsOutletStaff() {
		return nil, domain.ErrForbidden
	}
	lines, err := validateSale(in.PaymentMethod, in.Lines)
	if err != nil {
		return nil, err
	}
	proofURL, err := uc.uploadProof(ctx, in.PaymentMethod, proof)
	if err != nil {
		appinventory.LogFailure(uc.log, "create_sale", err)
		return nil, err
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:              uuid.New().String(),
		OutletID:        actor.OutletID,
		CashierID:       actor.ID,
		PaymentMethod:   in.PaymentMethod,
		PaymentProofURL: proofURL,
		SoldAt:          now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.SoldAt != nil {
		sale.SoldAt = *in.SoldAt
	}

	var postings []entity.LedgerPosting
	err = uc.txRunner.RunSales(ctx, func(s Stores) error {
		if err := price(ctx, s.Catalog, sale, lines); err != nil {
			return err
		}
		postings = inventory.ConsumptionPostings(sale.OutletID, sale.Consumption)
		if err := appinventory.PostLedger(ctx, s.Ledger, postings); err != nil {
			return err
		}
		if err := s.Sales.Create(ctx, sale); err != nil {
			return err
		}
		return s.Revenue.Add(ctx, sale.OutletID, RevenueDay(sale.SoldAt), sale.Total, 1)
	})
	if err != nil {
		appinventory.LogFailure(uc.log, "create_sale", err)
		return nil, err
	}

	uc.log.Info().Str("sale_id", sale.ID).Str("outlet_id", sale.OutletID).Str("total", sale.Total.String()).
		Int("lines", len(sale.Lines)).Msg("venta registrada")
	appinventory.Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventSaleCreated, EntityID: sale.ID, OutletID: sale.OutletID, ActorID: actor.ID, Postings: postings, OccurredAt: now,
	})
	return toSaleResponse(sale), nil
}

// Update reemplaza las líneas de una venta: acredita el consumo anterior y debita el nuevo en una
// sola transacción. Cambiar a efectivo elimina el comprobante.
func (uc *SaleUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateSaleRequest, proof []byte) (*dto.SaleResponse, error) {
	lines, err := validateSale(in.PaymentMethod, in.Lines)
	if err != nil {
		return nil, err
	}
	current, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if err := requireCashierOf(actor, current.OutletID); err != nil {
		appinventory.LogFailure(uc.log, "update_sale", err)
		return nil, err
	}
	proofURL, err := uc.uploadProof(ctx, in.PaymentMethod, proof)
	if err != nil {
		appinventory.LogFailure(uc.log, "update_sale", err)
		return nil, err
	}

	var (
		sale     *entity.Sale
		postings []entity.LedgerPosting
	)
	err = uc.txRunner.RunSales(ctx, func(s Stores) error {
		var err error
		sale, err = s.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if err := requireCashierOf(actor, sale.OutletID); err != nil {
			return err
		}
		oldConsumption := inventory.ConsumptionPostings(sale.OutletID, sale.Consumption)
		oldDay, oldTotal := RevenueDay(sale.SoldAt), sale.Total

		if err := price(ctx, s.Catalog, sale, lines); err != nil {
			return err
		}
		postings = append(inventory.Reverse(oldConsumption), inventory.ConsumptionPostings(sale.OutletID, sale.Consumption)...)
		if err := appinventory.PostLedger(ctx, s.Ledger, postings); err != nil {
			return err
		}

		sale.PaymentMethod = in.PaymentMethod
		switch {
		case in.PaymentMethod == entity.PaymentMethodCash:
			sale.PaymentProofURL = ""
		case proofURL != "":
			sale.PaymentProofURL = proofURL
		}
		if in.SoldAt != nil {
			sale.SoldAt = *in.SoldAt
		}
		sale.UpdatedAt = time.Now()
		if err := s.Sales.Replace(ctx, sale); err != nil {
			return err
		}
		if err := s.Revenue.Add(ctx, sale.OutletID, oldDay, oldTotal.Neg(), -1); err != nil {
			return err
		}
		return s.Revenue.Add(ctx, sale.OutletID, RevenueDay(sale.SoldAt), sale.Total, 1)
	})
	if err != nil {
		appinventory.LogFailure(uc.log, "update_sale", err)
		return nil, err
	}

	uc.log.Info().Str("sale_id", sale.ID).Str("outlet_id", sale.OutletID).Str("total", sale.Total.String()).Msg("venta actualizada")
	appinventory.Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventSaleUpdated, EntityID: sale.ID, OutletID: sale.OutletID, ActorID: actor.ID, Postings: postings,
	})
	return toSaleResponse(sale), nil
}

// Delete revierte el consumo registrado de la venta y la elimina.
func (uc *SaleUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	var (
		sale     *entity.Sale
		postings []entity.LedgerPosting
	)
	err := uc.txRunner.RunSales(ctx, func(s Stores) error {
		var err error
		sale, err = s.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if !actor.HasOversight() {
			if err := requireCashierOf(actor, sale.OutletID); err != nil {
				return err
			}
		}
		postings = inventory.Reverse(inventory.ConsumptionPostings(sale.OutletID, sale.Consumption))
		if err := appinventory.PostLedger(ctx, s.Ledger, postings); err != nil {
			return err
		}
		if err := s.Sales.Delete(ctx, id); err != nil {
			return err
		}
		return s.Revenue.Add(ctx, sale.OutletID, RevenueDay(sale.SoldAt), sale.Total.Neg(), -1)
	})
	if err != nil {
		appinventory.LogFailure(uc.log, "delete_sale", err)
		return err
	}
	uc.log.Info().Str("sale_id", id).Str("outlet_id", sale.OutletID).Msg("venta eliminada")
	appinventory.Publish(ctx, uc.events, uc.log, entity.StockEvent{
		Type: entity.EventSaleDeleted, EntityID: id, OutletID: sale.OutletID, ActorID: actor.ID, Postings: postings,
	})
	return nil
}

// GetByID obtiene una venta visible para el actor.
func (uc *SaleUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if err := domain.RequireOutletView(actor, sale.OutletID); err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// List lista las ventas de un outlet. El personal de outlet queda fijado al suyo.
func (uc *SaleUseCase) List(ctx context.Context, actor entity.Actor, outletID string, limit, offset int) (*dto.SaleListResponse, error) {
	outletID, err := resolveOutlet(actor, outletID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.sales.ListByOutlet(ctx, outletID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	list, pageInfo := dto.TrimPage(list, limit, offset)
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s))
	}
	return &dto.SaleListResponse{Items: items, Page: pageInfo}, nil
}

// DailyRevenue ingreso de un outlet en un día (YYYY-MM-DD; vacío = hoy).
func (uc *SaleUseCase) DailyRevenue(ctx context.Context, actor entity.Actor, outletID, day string) (*dto.DailyRevenueResponse, error) {
	outletID, err := resolveOutlet(actor, outletID)
	if err != nil {
		return nil, err
	}
	d := RevenueDay(time.Now())
	if day != "" {
		parsed, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		d = parsed
	}
	rev, err := uc.revenue.Get(ctx, outletID, d)
	if err != nil {
		return nil, err
	}
	out := &dto.DailyRevenueResponse{OutletID: outletID, Day: d.Format(time.DateOnly), Total: decimal.Zero}
	if rev != nil {
		out.Total = rev.Total
		out.SalesCount = rev.SalesCount
	}
	return out, nil
}

// RevenueDay día calendario (UTC) al que se imputa una venta.
func RevenueDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (uc *SaleUseCase) uploadProof(ctx context.Context, method string, proof []byte) (string, error) {
	if method != entity.PaymentMethodQRIS || len(proof) == 0 || uc.storage == nil {
		return "", nil
	}
	url, err := uc.storage.Upload(ctx, paymentProofFolder, proof)
	if err != nil {
		if !errors.Is(err, domain.ErrUploadFailed) && !errors.Is(err, domain.ErrInvalidInput) {
			err = fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
		}
		return "", err
	}
	return url, nil
}

func validateSale(method string, in []dto.SaleLineRequest) ([]inventory.Line, error) {
	if !entity.ValidPaymentMethod(method) || len(in) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines := make([]inventory.Line, 0, len(in))
	for _, l := range in {
		if l.ProductID == "" || l.Quantity < 1 {
			return nil, domain.ErrInvalidInput
		}
		lines = append(lines, inventory.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return lines, nil
}

// price resuelve productos y BOM dentro de la transacción y completa líneas, total y consumo.
func price(ctx context.Context, catalog repository.CatalogRepository, sale *entity.Sale, lines []inventory.Line) error {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := catalog.GetProducts(ctx, ids)
	if err != nil {
		return err
	}
	consumption, err := inventory.Requirements(lines, products)
	if err != nil {
		return err
	}
	total := decimal.Zero
	saleLines := make([]entity.SaleLine, 0, len(lines))
	for _, l := range lines {
		p := products[l.ProductID]
		if !p.Available {
			return fmt.Errorf("%w: producto %s no disponible", domain.ErrInvalidInput, p.ID)
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(l.Quantity))
		saleLines = append(saleLines, entity.SaleLine{
			ID:        uuid.New().String(),
			SaleID:    sale.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: p.Price,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}
	sale.Lines = saleLines
	sale.Total = total
	sale.Consumption = consumption
	return nil
}

func requireCashierOf(actor entity.Actor, outletID string) error {
	if actor.OwnsOutlet(outletID) {
		return nil
	}
	if actor.IsOutletStaff() {
		return domain.ErrForbiddenOutletMismatch
	}
	return domain.ErrForbidden
}

func resolveOutlet(actor entity.Actor, outletID string) (string, error) {
	if actor.IsOutletStaff() {
		if outletID != "" && outletID != actor.OutletID {
			return "", domain.ErrForbiddenOutletMismatch
		}
		return actor.OutletID, nil
	}
	if !actor.HasOversight() && !actor.IsWarehouse() {
		return "", domain.ErrForbidden
	}
	if outletID == "" {
		return "", domain.ErrInvalidInput
	}
	return outletID, nil
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	if s == nil {
		return nil
	}
	lines := make([]dto.SaleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, dto.SaleLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	consumption := make([]dto.MaterialQuantityResponse, 0, len(s.Consumption))
	for _, c := range s.Consumption {
		consumption = append(consumption, dto.MaterialQuantityResponse{MaterialID: c.MaterialID, Quantity: c.Quantity})
	}
	return &dto.SaleResponse{
		ID:              s.ID,
		OutletID:        s.OutletID,
		CashierID:       s.CashierID,
		PaymentMethod:   s.PaymentMethod,
		PaymentProofURL: s.PaymentProofURL,
		SoldAt:          s.SoldAt,
		Total:           s.Total,
		Lines:           lines,
		Consumption:     consumption,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
