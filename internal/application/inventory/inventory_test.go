package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/application/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	warehouseActor = entity.Actor{ID: "w-1", Role: entity.RoleWarehouse}
	cashierO1      = entity.Actor{ID: "c-1", Role: entity.RoleCashier, OutletID: "o1"}
	cashierO2      = entity.Actor{ID: "c-2", Role: entity.RoleCashier, OutletID: "o2"}
	ownerActor     = entity.Actor{ID: "own-1", Role: entity.RoleOwner}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store      *memory.Store
	intakes    *inventory.IntakeUseCase
	requests   *inventory.RequestUseCase
	dispatches *inventory.DispatchUseCase
	stock      *inventory.StockQueryUseCase
	events     *recordingPublisher
	storage    *fakeStorage
}

type recordingPublisher struct{ events []entity.StockEvent }

func (p *recordingPublisher) Publish(_ context.Context, ev entity.StockEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type fakeStorage struct {
	calls int
	err   error
}

func (s *fakeStorage) Upload(_ context.Context, folder string, _ []byte) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "https://storage.test/" + folder + "/proof.jpg", nil
}

// newFixture: bodega con 100 unidades de M, outlets o1 y o2.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddOutlet("o1", "Outlet Centro")
	store.AddOutlet("o2", "Outlet Norte")
	store.AddMaterial(entity.Material{ID: "M", Name: "Leche", Unit: "l", WarehouseMinimum: dec("20"), OutletMinimum: dec("10")})
	store.AddMaterial(entity.Material{ID: "C", Name: "Café", Unit: "kg", WarehouseMinimum: dec("1"), OutletMinimum: dec("0.5")})
	store.SetStock(entity.WarehouseKey("M"), dec("100"))

	log := zerolog.Nop()
	events := &recordingPublisher{}
	storage := &fakeStorage{}
	return &fixture{
		store:      store,
		intakes:    inventory.NewIntakeUseCase(store, store.Intakes(), events, log),
		requests:   inventory.NewRequestUseCase(store, store.Requests(), events, log),
		dispatches: inventory.NewDispatchUseCase(store, store.Dispatches(), store.Catalog(), storage, nil, events, log),
		stock:      inventory.NewStockQueryUseCase(store.Ledger(), store.Catalog()),
		events:     events,
		storage:    storage,
	}
}

func (f *fixture) qty(t *testing.T, key entity.LedgerKey) decimal.Decimal {
	t.Helper()
	row, err := f.store.Ledger().Get(context.Background(), key)
	require.NoError(t, err)
	return row.Quantity
}

func (f *fixture) assertQty(t *testing.T, key entity.LedgerKey, want string) {
	t.Helper()
	got := f.qty(t, key)
	assert.True(t, dec(want).Equal(got), "%+v: esperado %s, obtenido %s", key, want, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario: recepción → solicitud aprobada directamente
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenario_RecepcionYAprobacionDirecta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	intake, err := f.intakes.Record(ctx, warehouseActor, dto.RecordIntakeRequest{MaterialID: "M", Quantity: dec("50"), Supplier: "Lácteos SA"})
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(intake.Quantity), "la cantidad persistida es la acreditada")
	f.assertQty(t, entity.WarehouseKey("M"), "150")

	req, err := f.requests.Create(ctx, cashierO1, dto.CreateStockRequestRequest{MaterialID: "M", Quantity: dec("40")})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusRequested, req.Status)
	assert.Equal(t, "o1", req.OutletID)

	approved, err := f.requests.Approve(ctx, warehouseActor, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusApproved, approved.Status)
	f.assertQty(t, entity.WarehouseKey("M"), "110")
	f.assertQty(t, entity.OutletKey("o1", "M"), "40")

	// Una segunda aprobación no mueve ledgers
	_, err = f.requests.Approve(ctx, warehouseActor, req.ID)
	assert.ErrorIs(t, err, domain.ErrRequestAlreadyProcessed)
	f.assertQty(t, entity.WarehouseKey("M"), "110")

	received, err := f.requests.Receive(ctx, cashierO1, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusReceived, received.Status)
	f.assertQty(t, entity.OutletKey("o1", "M"), "40")

	_, err = f.requests.Approve(ctx, warehouseActor, req.ID)
	assert.ErrorIs(t, err, domain.ErrRequestAlreadyFinalized)
}

func TestAprobacion_StockInsuficienteNoMueveNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.requests.Create(ctx, cashierO1, dto.CreateStockRequestRequest{MaterialID: "M", Quantity: dec("101")})
	require.NoError(t, err)

	_, err = f.requests.Approve(ctx, warehouseActor, req.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientWarehouseStock)

	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.True(t, dec("100").Equal(se.Available))
	assert.True(t, dec("101").Equal(se.Requested))

	f.assertQty(t, entity.WarehouseKey("M"), "100")
	f.assertQty(t, entity.OutletKey("o1", "M"), "0")
	got, err := f.requests.GetByID(ctx, warehouseActor, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusRequested, got.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario: despacho y recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenario_DespachoYRecepcion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetStock(entity.WarehouseKey("M"), dec("110"))
	f.store.SetStock(entity.OutletKey("o1", "M"), dec("38"))

	d, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o1", Quantity: dec("30")})
	require.NoError(t, err)
	assert.Equal(t, entity.DispatchStatusSent, d.Status)
	f.assertQty(t, entity.WarehouseKey("M"), "80")
	f.assertQty(t, entity.OutletKey("o1", "M"), "38")

	got, err := f.dispatches.Receive(ctx, cashierO1, d.ID, []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, entity.DispatchStatusReceived, got.Status)
	assert.NotEmpty(t, got.ProofURL)
	assert.Equal(t, cashierO1.ID, got.ReceivedBy)
	f.assertQty(t, entity.OutletKey("o1", "M"), "68")

	_, err = f.dispatches.Receive(ctx, cashierO1, d.ID, nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyReceived)
	f.assertQty(t, entity.WarehouseKey("M"), "80")
	f.assertQty(t, entity.OutletKey("o1", "M"), "68")
	assert.Equal(t, 1, f.storage.calls, "el segundo intento no sube nada")
}

func TestDespacho_RecepcionOtroOutlet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o1", Quantity: dec("10")})
	require.NoError(t, err)

	_, err = f.dispatches.Receive(ctx, cashierO2, d.ID, nil)
	assert.ErrorIs(t, err, domain.ErrForbiddenOutletMismatch)

	_, err = f.dispatches.Receive(ctx, ownerActor, d.ID, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.assertQty(t, entity.OutletKey("o1", "M"), "0")
}

func TestDespacho_RecepcionPorBodegaSinFoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o2", Quantity: dec("10")})
	require.NoError(t, err)

	got, err := f.dispatches.Receive(ctx, warehouseActor, d.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got.ProofURL)
	assert.Equal(t, 0, f.storage.calls)
	f.assertQty(t, entity.OutletKey("o2", "M"), "10")
}

func TestDespacho_FalloDeSubidaNoTocaLedgers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o1", Quantity: dec("10")})
	require.NoError(t, err)

	f.storage.err = errors.New("bucket no disponible")
	_, err = f.dispatches.Receive(ctx, cashierO1, d.ID, []byte("jpeg"))
	assert.ErrorIs(t, err, domain.ErrUploadFailed)

	f.assertQty(t, entity.OutletKey("o1", "M"), "0")
	got, err := f.dispatches.GetByID(ctx, warehouseActor, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DispatchStatusSent, got.Status)
}

func TestDespacho_StockInsuficiente(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatches.Create(context.Background(), warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o1", Quantity: dec("100.001")})
	assert.ErrorIs(t, err, domain.ErrInsufficientWarehouseStock)
	f.assertQty(t, entity.WarehouseKey("M"), "100")

	list, err := f.dispatches.List(context.Background(), warehouseActor, dto.DispatchFilter{}, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestDespacho_AtiendeSolicitud(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.requests.Create(ctx, cashierO1, dto.CreateStockRequestRequest{MaterialID: "M", Quantity: dec("25")})
	require.NoError(t, err)

	d, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{RequestID: req.ID})
	require.NoError(t, err)
	assert.Equal(t, "o1", d.OutletID)
	assert.True(t, dec("25").Equal(d.Quantity), "la cantidad por defecto es la solicitada")

	r, err := f.requests.GetByID(ctx, cashierO1, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusDispatched, r.Status)

	// La solicitud ya está en curso
	_, err = f.requests.Approve(ctx, warehouseActor, req.ID)
	assert.ErrorIs(t, err, domain.ErrRequestAlreadyProcessed)
	_, err = f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{RequestID: req.ID})
	assert.ErrorIs(t, err, domain.ErrRequestAlreadyProcessed)

	_, err = f.dispatches.Receive(ctx, cashierO1, d.ID, nil)
	require.NoError(t, err)
	r, err = f.requests.GetByID(ctx, cashierO1, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusReceived, r.Status)

	f.assertQty(t, entity.WarehouseKey("M"), "75")
	f.assertQty(t, entity.OutletKey("o1", "M"), "25")
}

func TestDespacho_EliminarVinculadoReabreSolicitud(t *testing.T) {
	for _, received := range []bool{false, true} {
		f := newFixture(t)
		ctx := context.Background()

		req, err := f.requests.Create(ctx, cashierO1, dto.CreateStockRequestRequest{MaterialID: "M", Quantity: dec("30")})
		require.NoError(t, err)
		d, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{RequestID: req.ID})
		require.NoError(t, err)
		if received {
			_, err = f.dispatches.Receive(ctx, cashierO1, d.ID, nil)
			require.NoError(t, err)
		}

		require.NoError(t, f.dispatches.Delete(ctx, warehouseActor, d.ID), "recibido=%v", received)
		f.assertQty(t, entity.WarehouseKey("M"), "100")
		f.assertQty(t, entity.OutletKey("o1", "M"), "0")

		r, err := f.requests.GetByID(ctx, cashierO1, req.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.RequestStatusRequested, r.Status)
		assert.Empty(t, r.ApprovedBy)

		// Eliminar de nuevo no revierte dos veces
		assert.ErrorIs(t, f.dispatches.Delete(ctx, warehouseActor, d.ID), domain.ErrNotFound)
		f.assertQty(t, entity.WarehouseKey("M"), "100")

		// La solicitud reabierta se puede volver a despachar
		again, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{RequestID: req.ID})
		require.NoError(t, err)
		assert.True(t, dec("30").Equal(again.Quantity))
		f.assertQty(t, entity.WarehouseKey("M"), "70")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reversión y enmienda
// ──────────────────────────────────────────────────────────────────────────────

func TestDespacho_CrearYEliminarRestauraLedgers(t *testing.T) {
	for _, received := range []bool{false, true} {
		f := newFixture(t)
		ctx := context.Background()
		f.store.SetStock(entity.OutletKey("o1", "M"), dec("5"))

		d, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o1", Quantity: dec("12.5")})
		require.NoError(t, err)
		if received {
			_, err = f.dispatches.Receive(ctx, warehouseActor, d.ID, nil)
			require.NoError(t, err)
		}

		require.NoError(t, f.dispatches.Delete(ctx, warehouseActor, d.ID))
		f.assertQty(t, entity.WarehouseKey("M"), "100")
		f.assertQty(t, entity.OutletKey("o1", "M"), "5")

		_, err = f.dispatches.GetByID(ctx, warehouseActor, d.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
}

func TestDespacho_EliminarRecibidoYaConsumidoFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o1", Quantity: dec("10")})
	require.NoError(t, err)
	_, err = f.dispatches.Receive(ctx, warehouseActor, d.ID, nil)
	require.NoError(t, err)
	// El outlet consumió parte del material
	f.store.SetStock(entity.OutletKey("o1", "M"), dec("4"))

	err = f.dispatches.Delete(ctx, warehouseActor, d.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientOutletStock)
	f.assertQty(t, entity.WarehouseKey("M"), "90")
	f.assertQty(t, entity.OutletKey("o1", "M"), "4")
}

func TestDespacho_EnmiendaCantidadYMaterial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetStock(entity.WarehouseKey("C"), dec("3"))

	d, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o1", Quantity: dec("30")})
	require.NoError(t, err)
	_, err = f.dispatches.Receive(ctx, cashierO1, d.ID, nil)
	require.NoError(t, err)

	qty := dec("20")
	amended, err := f.dispatches.Amend(ctx, warehouseActor, d.ID, dto.AmendDispatchRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.True(t, qty.Equal(amended.Quantity))
	f.assertQty(t, entity.WarehouseKey("M"), "80")
	f.assertQty(t, entity.OutletKey("o1", "M"), "20")

	// Cambio de material: sólo 3 de C en bodega
	material := "C"
	_, err = f.dispatches.Amend(ctx, warehouseActor, d.ID, dto.AmendDispatchRequest{MaterialID: &material})
	assert.ErrorIs(t, err, domain.ErrInsufficientWarehouseStock)
	f.assertQty(t, entity.WarehouseKey("M"), "80")
	f.assertQty(t, entity.OutletKey("o1", "M"), "20")
	f.assertQty(t, entity.WarehouseKey("C"), "3")

	small := dec("2")
	_, err = f.dispatches.Amend(ctx, warehouseActor, d.ID, dto.AmendDispatchRequest{MaterialID: &material, Quantity: &small})
	require.NoError(t, err)
	f.assertQty(t, entity.WarehouseKey("M"), "100")
	f.assertQty(t, entity.OutletKey("o1", "M"), "0")
	f.assertQty(t, entity.WarehouseKey("C"), "1")
	f.assertQty(t, entity.OutletKey("o1", "C"), "2")
}

func TestRecepcion_CorreccionYEliminacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	intake, err := f.intakes.Record(ctx, warehouseActor, dto.RecordIntakeRequest{MaterialID: "M", Quantity: dec("50"), Supplier: "Lácteos SA"})
	require.NoError(t, err)

	q := dec("20.5")
	_, err = f.intakes.Update(ctx, warehouseActor, intake.ID, dto.UpdateIntakeRequest{Quantity: &q})
	require.NoError(t, err)
	f.assertQty(t, entity.WarehouseKey("M"), "120.5")

	require.NoError(t, f.intakes.Delete(ctx, warehouseActor, intake.ID))
	f.assertQty(t, entity.WarehouseKey("M"), "100")

	// Una recepción ya despachada no puede eliminarse si deja la bodega en negativo
	intake, err = f.intakes.Record(ctx, warehouseActor, dto.RecordIntakeRequest{MaterialID: "C", Quantity: dec("5"), Supplier: "Tostadores"})
	require.NoError(t, err)
	_, err = f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "C", OutletID: "o1", Quantity: dec("4")})
	require.NoError(t, err)
	assert.ErrorIs(t, f.intakes.Delete(ctx, warehouseActor, intake.ID), domain.ErrInsufficientWarehouseStock)
	f.assertQty(t, entity.WarehouseKey("C"), "1")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y permisos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecepcion_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor entity.Actor
		in    dto.RecordIntakeRequest
		want  error
	}{
		{"cajero no registra", cashierO1, dto.RecordIntakeRequest{MaterialID: "M", Quantity: dec("1"), Supplier: "x"}, domain.ErrForbidden},
		{"cantidad cero", warehouseActor, dto.RecordIntakeRequest{MaterialID: "M", Quantity: dec("0"), Supplier: "x"}, domain.ErrInvalidInput},
		{"demasiados decimales", warehouseActor, dto.RecordIntakeRequest{MaterialID: "M", Quantity: dec("1.0001"), Supplier: "x"}, domain.ErrInvalidInput},
		{"sin proveedor", warehouseActor, dto.RecordIntakeRequest{MaterialID: "M", Quantity: dec("1"), Supplier: " "}, domain.ErrInvalidInput},
		{"material inexistente", warehouseActor, dto.RecordIntakeRequest{MaterialID: "X", Quantity: dec("1"), Supplier: "x"}, domain.ErrCatalogReferenceNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.intakes.Record(ctx, tc.actor, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	f.assertQty(t, entity.WarehouseKey("M"), "100")
	assert.Empty(t, f.events.events, "ningún rechazo publica eventos")
}

func TestSolicitud_OutletDelActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.requests.Create(ctx, cashierO1, dto.CreateStockRequestRequest{OutletID: "o2", MaterialID: "M", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrForbiddenOutletMismatch)

	_, err = f.requests.Create(ctx, warehouseActor, dto.CreateStockRequestRequest{MaterialID: "M", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	req, err := f.requests.Create(ctx, cashierO2, dto.CreateStockRequestRequest{MaterialID: "M", Quantity: dec("1")})
	require.NoError(t, err)

	_, err = f.requests.GetByID(ctx, cashierO1, req.ID)
	assert.ErrorIs(t, err, domain.ErrForbiddenOutletMismatch)

	list, err := f.requests.List(ctx, cashierO1, dto.StockRequestFilter{}, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items, "o1 no ve solicitudes de o2")

	list, err = f.requests.List(ctx, ownerActor, dto.StockRequestFilter{}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura de ledgers
// ──────────────────────────────────────────────────────────────────────────────

func TestSolicitud_ListadoPaginadoIndicaSiHayMas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, q := range []string{"1", "2", "3"} {
		_, err := f.requests.Create(ctx, cashierO1, dto.CreateStockRequestRequest{MaterialID: "M", Quantity: dec(q)})
		require.NoError(t, err)
	}

	first, err := f.requests.List(ctx, cashierO1, dto.StockRequestFilter{}, 2, 0)
	require.NoError(t, err)
	assert.Len(t, first.Items, 2)
	assert.True(t, first.Page.HasMore)
	assert.Equal(t, 2, first.Page.Limit)

	last, err := f.requests.List(ctx, cashierO1, dto.StockRequestFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.False(t, last.Page.HasMore)

	exact, err := f.requests.List(ctx, cashierO1, dto.StockRequestFilter{}, 3, 0)
	require.NoError(t, err)
	assert.Len(t, exact.Items, 3)
	assert.False(t, exact.Page.HasMore, "página exacta sin elementos restantes")
}

func TestStock_EstadoCritico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetStock(entity.WarehouseKey("C"), dec("1"))
	f.store.SetStock(entity.OutletKey("o1", "M"), dec("10"))
	f.store.SetStock(entity.OutletKey("o2", "M"), dec("11"))

	wh, err := f.stock.Warehouse(ctx, warehouseActor, dto.StockQuery{CriticalOnly: true})
	require.NoError(t, err)
	require.Len(t, wh.Items, 1)
	assert.Equal(t, "C", wh.Items[0].MaterialID)
	assert.Equal(t, entity.StockStatusCritical, wh.Items[0].Status)

	out, err := f.stock.Outlet(ctx, ownerActor, dto.StockQuery{MaterialID: "M"})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, entity.StockStatusCritical, out.Items[0].Status)
	assert.Equal(t, entity.StockStatusOK, out.Items[1].Status)

	mine, err := f.stock.Outlet(ctx, cashierO2, dto.StockQuery{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "o2", mine.Items[0].OutletID)

	_, err = f.stock.Outlet(ctx, cashierO2, dto.StockQuery{OutletID: "o1"})
	assert.ErrorIs(t, err, domain.ErrForbiddenOutletMismatch)
}

func TestStock_BodegaSoloParaBodegaYSupervision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stock.Warehouse(ctx, cashierO1, dto.StockQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.stock.Warehouse(ctx, entity.Actor{ID: "x", Role: "admin"}, dto.StockQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	for _, actor := range []entity.Actor{warehouseActor, ownerActor, {ID: "sup-1", Role: entity.RoleSupervisor}} {
		wh, err := f.stock.Warehouse(ctx, actor, dto.StockQuery{})
		require.NoError(t, err, actor.Role)
		assert.Len(t, wh.Items, 1)
	}
}

func TestReposicion_Sugerencias(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetStock(entity.OutletKey("o1", "M"), dec("4"))
	uc := inventory.NewReplenishmentUseCase(f.store.Ledger(), f.store.Catalog(), f.store.Requests(), f.store.Dispatches())

	_, err := f.requests.Create(ctx, cashierO1, dto.CreateStockRequestRequest{MaterialID: "C", Quantity: dec("1")})
	require.NoError(t, err)

	list, err := uc.Suggestions(ctx, cashierO1, "")
	require.NoError(t, err)
	require.Len(t, list, 2)

	// C nunca recibido: cobertura 0, primero
	assert.Equal(t, "C", list[0].MaterialID)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].Pending)
	assert.True(t, dec("0.75").Equal(list[0].SuggestedQty))

	assert.Equal(t, "M", list[1].MaterialID)
	assert.True(t, dec("11").Equal(list[1].SuggestedQty), "15 - 4")
	assert.True(t, dec("100").Equal(list[1].WarehouseQty))
	assert.False(t, list[1].Pending)
}

func TestReposicion_DespachoEnCaminoCuentaComoPendiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetStock(entity.OutletKey("o1", "M"), dec("4"))
	uc := inventory.NewReplenishmentUseCase(f.store.Ledger(), f.store.Catalog(), f.store.Requests(), f.store.Dispatches())

	req, err := f.requests.Create(ctx, cashierO1, dto.CreateStockRequestRequest{MaterialID: "M", Quantity: dec("6")})
	require.NoError(t, err)
	_, err = f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{RequestID: req.ID})
	require.NoError(t, err)
	// Despacho suelto al mismo outlet, también en camino
	_, err = f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o1", Quantity: dec("2")})
	require.NoError(t, err)

	list, err := uc.Suggestions(ctx, cashierO1, "")
	require.NoError(t, err)
	var m *dto.ReplenishmentSuggestionDTO
	for i := range list {
		if list[i].MaterialID == "M" {
			m = &list[i]
		}
	}
	require.NotNil(t, m, "el stock físico sigue en el mínimo")
	assert.True(t, m.Pending)
	assert.True(t, dec("8").Equal(m.InTransitQty), "got %s", m.InTransitQty)
	assert.True(t, dec("3").Equal(m.SuggestedQty), "15 - 4 - 8, got %s", m.SuggestedQty)

	// Otro outlet no ve el tránsito de o1
	other, err := uc.Suggestions(ctx, cashierO2, "")
	require.NoError(t, err)
	for _, s := range other {
		if s.MaterialID == "M" {
			assert.False(t, s.Pending)
			assert.True(t, s.InTransitQty.IsZero())
		}
	}
}

func TestReposicion_EnCaminoCubreTodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetStock(entity.OutletKey("o1", "M"), dec("4"))
	uc := inventory.NewReplenishmentUseCase(f.store.Ledger(), f.store.Catalog(), f.store.Requests(), f.store.Dispatches())

	_, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o1", Quantity: dec("20")})
	require.NoError(t, err)

	list, err := uc.Suggestions(ctx, cashierO1, "")
	require.NoError(t, err)
	for _, s := range list {
		if s.MaterialID == "M" {
			assert.True(t, s.SuggestedQty.IsZero(), "nunca negativo, got %s", s.SuggestedQty)
			assert.True(t, s.Pending)
		}
	}
}

func TestConservacion_TransferenciasNoCambianElTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	total := func() decimal.Decimal {
		sum := decimal.Zero
		wh, err := f.store.Ledger().ListWarehouse(ctx, repository.LedgerFilter{})
		require.NoError(t, err)
		out, err := f.store.Ledger().ListOutlet(ctx, repository.LedgerFilter{})
		require.NoError(t, err)
		for _, r := range append(wh, out...) {
			if r.Key.MaterialID == "M" {
				sum = sum.Add(r.Quantity)
			}
		}
		return sum
	}

	_, err := f.intakes.Record(ctx, warehouseActor, dto.RecordIntakeRequest{MaterialID: "M", Quantity: dec("7.25"), Supplier: "x"})
	require.NoError(t, err)
	before := total()
	assert.True(t, dec("107.25").Equal(before))

	req, err := f.requests.Create(ctx, cashierO1, dto.CreateStockRequestRequest{MaterialID: "M", Quantity: dec("3.5")})
	require.NoError(t, err)
	_, err = f.requests.Approve(ctx, warehouseActor, req.ID)
	require.NoError(t, err)

	d, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o2", Quantity: dec("9")})
	require.NoError(t, err)
	_, err = f.dispatches.Receive(ctx, cashierO2, d.ID, nil)
	require.NoError(t, err)

	// Un despacho en tránsito no está en ningún ledger
	inTransit, err := f.dispatches.Create(ctx, warehouseActor, dto.CreateDispatchRequest{MaterialID: "M", OutletID: "o1", Quantity: dec("1")})
	require.NoError(t, err)
	assert.True(t, before.Sub(dec("1")).Equal(total()))

	_, err = f.dispatches.Receive(ctx, warehouseActor, inTransit.ID, nil)
	require.NoError(t, err)
	assert.True(t, before.Equal(total()))
}
