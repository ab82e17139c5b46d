package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-outlets-api/internal/application/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/application/sales"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-outlets-api/internal/interfaces/http"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type stubStorage struct{ calls int }

func (s *stubStorage) Upload(_ context.Context, folder string, _ []byte) (string, error) {
	s.calls++
	return "https://storage.test/" + folder + "/proof.jpg", nil
}

type api struct {
	t       *testing.T
	app     *fiber.App
	store   *memory.Store
	storage *stubStorage
}

// newAPI: bodega con 100 de leche (M), outlets o1 y o2, producto latte (0.2 M por unidad).
func newAPI(t *testing.T) *api {
	t.Helper()
	store := memory.NewStore()
	store.AddOutlet("o1", "Outlet Centro")
	store.AddOutlet("o2", "Outlet Norte")
	store.AddMaterial(entity.Material{ID: "M", Name: "Leche", Unit: "l", WarehouseMinimum: dec("20"), OutletMinimum: dec("10")})
	store.AddProduct(entity.Product{ID: "latte", Name: "Latte", Price: dec("25000"), Available: true,
		BOM: []entity.BOMEntry{{ProductID: "latte", MaterialID: "M", Ratio: dec("0.2")}}})
	store.SetStock(entity.WarehouseKey("M"), dec("100"))

	log := zerolog.Nop()
	storage := &stubStorage{}
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		IntakeUC:        inventory.NewIntakeUseCase(store, store.Intakes(), nil, log),
		RequestUC:       inventory.NewRequestUseCase(store, store.Requests(), nil, log),
		DispatchUC:      inventory.NewDispatchUseCase(store, store.Dispatches(), store.Catalog(), storage, nil, nil, log),
		StockUC:         inventory.NewStockQueryUseCase(store.Ledger(), store.Catalog()),
		ReplenishmentUC: inventory.NewReplenishmentUseCase(store.Ledger(), store.Catalog(), store.Requests(), store.Dispatches()),
		SaleUC:          sales.NewSaleUseCase(store, store.Sales(), store.Revenue(), storage, nil, log),
		ProductUC:       sales.NewProductQueryUseCase(store.Catalog()),
		JWTSecret:       testJWTSecret,
	})
	return &api{t: t, app: app, store: store, storage: storage}
}

func (a *api) do(method, path, auth string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", auth)
	return a.send(req)
}

func (a *api) send(req *http.Request) (int, map[string]interface{}) {
	a.t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(a.t, json.Unmarshal(raw, &out), "cuerpo: %s", raw)
	}
	return resp.StatusCode, out
}

func (a *api) outletQty(outletID string) decimal.Decimal {
	a.t.Helper()
	row, err := a.store.Ledger().Get(context.Background(), entity.OutletKey(outletID, "M"))
	require.NoError(a.t, err)
	return row.Quantity
}

func (a *api) warehouseQty() decimal.Decimal {
	a.t.Helper()
	row, err := a.store.Ledger().Get(context.Background(), entity.WarehouseKey("M"))
	require.NoError(a.t, err)
	return row.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujos completos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_RecepcionSolicitudYAprobacion(t *testing.T) {
	a := newAPI(t)
	bodega := tokenFor(t, "w-1", "warehouse", "")
	cajero := tokenFor(t, "c-1", "cashier", "o1")

	status, body := a.do(http.MethodPost, "/api/intakes", bodega, map[string]interface{}{
		"material_id": "M", "quantity": "50", "supplier": "Lácteos SA",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "w-1", body["created_by"])
	assert.True(t, dec("150").Equal(a.warehouseQty()))

	status, body = a.do(http.MethodPost, "/api/requests", cajero, map[string]interface{}{
		"material_id": "M", "quantity": "40",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "requested", body["status"])
	assert.Equal(t, "o1", body["outlet_id"])
	id := body["id"].(string)

	// El cajero no aprueba.
	status, body = a.do(http.MethodPost, "/api/requests/"+id+"/approve", cajero, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, body = a.do(http.MethodPost, "/api/requests/"+id+"/approve", bodega, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "approved", body["status"])
	assert.True(t, dec("110").Equal(a.warehouseQty()))
	assert.True(t, dec("40").Equal(a.outletQty("o1")))

	status, body = a.do(http.MethodPost, "/api/requests/"+id+"/approve", bodega, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_PROCESSED", body["code"])
	assert.True(t, dec("110").Equal(a.warehouseQty()), "la segunda aprobación no mueve stock")

	status, body = a.do(http.MethodGet, "/api/stock/outlets", cajero, nil)
	require.Equal(t, http.StatusOK, status, body)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	row := items[0].(map[string]interface{})
	assert.Equal(t, "o1", row["outlet_id"])
	assert.Equal(t, "40", row["quantity"])
	assert.Equal(t, "ok", row["status"])
}

func TestAPI_AprobacionSinStockDeBodega(t *testing.T) {
	a := newAPI(t)
	bodega := tokenFor(t, "w-1", "warehouse", "")
	cajero := tokenFor(t, "c-1", "cashier", "o1")

	status, body := a.do(http.MethodPost, "/api/requests", cajero, map[string]interface{}{"material_id": "M", "quantity": "500"})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = a.do(http.MethodPost, "/api/requests/"+body["id"].(string)+"/approve", bodega, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_WAREHOUSE_STOCK", body["code"])
	assert.True(t, dec("100").Equal(a.warehouseQty()))
	assert.True(t, a.outletQty("o1").IsZero())
}

func TestAPI_DespachoYRecepcionConComprobante(t *testing.T) {
	a := newAPI(t)
	bodega := tokenFor(t, "w-1", "warehouse", "")

	status, body := a.do(http.MethodPost, "/api/dispatches", bodega, map[string]interface{}{
		"material_id": "M", "outlet_id": "o1", "quantity": "10",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "sent", body["status"])
	id := body["id"].(string)
	assert.True(t, dec("90").Equal(a.warehouseQty()))
	assert.True(t, a.outletQty("o1").IsZero(), "en tránsito no está en ningún ledger")

	// Cajero de otro outlet.
	status, body = a.do(http.MethodPost, "/api/dispatches/"+id+"/receive", tokenFor(t, "c-2", "cashier", "o2"), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "OUTLET_MISMATCH", body["code"])

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("proof", "entrega.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("foto"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dispatches/"+id+"/receive", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", tokenFor(t, "c-1", "cashier", "o1"))
	status, body = a.send(req)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "received", body["status"])
	assert.Equal(t, "c-1", body["received_by"])
	assert.NotEmpty(t, body["proof_url"])
	assert.Equal(t, 1, a.storage.calls)
	assert.True(t, dec("10").Equal(a.outletQty("o1")))

	status, body = a.do(http.MethodPost, "/api/dispatches/"+id+"/receive", tokenFor(t, "c-1", "cashier", "o1"), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_RECEIVED", body["code"])
	assert.True(t, dec("10").Equal(a.outletQty("o1")))
}

func TestAPI_VentaConsumeYRechazaSinStock(t *testing.T) {
	a := newAPI(t)
	a.store.SetStock(entity.OutletKey("o1", "M"), dec("5"))
	cajero := tokenFor(t, "c-1", "cashier", "o1")

	status, body := a.do(http.MethodPost, "/api/sales", cajero, map[string]interface{}{
		"payment_method": "cash",
		"lines":          []map[string]interface{}{{"product_id": "latte", "quantity": 100}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_OUTLET_STOCK", body["code"])
	assert.True(t, dec("5").Equal(a.outletQty("o1")))

	status, body = a.do(http.MethodPost, "/api/sales", cajero, map[string]interface{}{
		"payment_method": "cash",
		"lines":          []map[string]interface{}{{"product_id": "latte", "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "o1", body["outlet_id"])
	assert.Equal(t, "50000", body["total"])
	assert.True(t, dec("4.6").Equal(a.outletQty("o1")))

	status, _ = a.do(http.MethodDelete, "/api/sales/"+body["id"].(string), cajero, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.True(t, dec("5").Equal(a.outletQty("o1")))
}

func TestAPI_ProductoDesconocido(t *testing.T) {
	a := newAPI(t)
	status, body := a.do(http.MethodPost, "/api/sales", tokenFor(t, "c-1", "cashier", "o1"), map[string]interface{}{
		"payment_method": "cash",
		"lines":          []map[string]interface{}{{"product_id": "no-existe", "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "CATALOG_REFERENCE_NOT_FOUND", body["code"])
}

func TestAPI_ValidacionDeEntrada(t *testing.T) {
	a := newAPI(t)
	bodega := tokenFor(t, "w-1", "warehouse", "")

	status, body := a.do(http.MethodPost, "/api/intakes", bodega, map[string]interface{}{
		"material_id": "M", "quantity": "0", "supplier": "Lácteos SA",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, body = a.do(http.MethodPost, "/api/sales", tokenFor(t, "c-1", "cashier", "o1"), map[string]interface{}{
		"payment_method": "tarjeta",
		"lines":          []map[string]interface{}{{"product_id": "latte", "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.True(t, dec("100").Equal(a.warehouseQty()))
}

func TestAPI_CajeroNoVeStockDeBodega(t *testing.T) {
	a := newAPI(t)
	status, _ := a.do(http.MethodGet, "/api/stock/warehouse", tokenFor(t, "c-1", "cashier", "o1"), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := a.do(http.MethodGet, "/api/stock/warehouse", tokenFor(t, "own-1", "owner", ""), nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["items"], 1)
}

func TestAPI_ReposicionYIngresoDiario(t *testing.T) {
	a := newAPI(t)
	a.store.SetStock(entity.OutletKey("o1", "M"), dec("4"))
	cajero := tokenFor(t, "c-1", "cashier", "o1")

	status, body := a.do(http.MethodGet, "/api/stock/replenishment", cajero, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1), body["total"])
	item := body["replenishments"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "M", item["material_id"])
	assert.Equal(t, "11", item["suggested_qty"], "15 ideal - 4 actual")

	status, _ = a.do(http.MethodGet, "/api/stock/replenishment?outlet_id=o2", cajero, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = a.do(http.MethodPost, "/api/sales", cajero, map[string]interface{}{
		"payment_method": "cash",
		"sold_at":        "2026-03-02T10:00:00Z",
		"lines":          []map[string]interface{}{{"product_id": "latte", "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = a.do(http.MethodGet, "/api/revenue/daily?day=2026-03-02", cajero, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "o1", body["outlet_id"])
	assert.Equal(t, "2026-03-02", body["day"])
	assert.Equal(t, "25000", body["total"])
	assert.Equal(t, float64(1), body["sales_count"])
}

func TestAPI_CatalogoDeProductos(t *testing.T) {
	a := newAPI(t)
	a.store.AddProduct(entity.Product{ID: "mocha", Name: "Mocha", Price: dec("28000"), Available: false})
	cajero := tokenFor(t, "c-1", "cashier", "o1")

	status, body := a.do(http.MethodGet, "/api/products?include_unavailable=true", cajero, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1), body["total"])
	p := body["products"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "latte", p["id"])
	assert.Equal(t, "25000", p["price"])
	bom := p["bom"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "M", bom["material_id"])
	assert.Equal(t, "Leche", bom["material_name"])
	assert.Equal(t, "0.2", bom["ratio"])

	status, _ = a.do(http.MethodGet, "/api/products/mocha", cajero, nil)
	assert.Equal(t, http.StatusNotFound, status)

	owner := tokenFor(t, "u-1", "owner", "")
	status, body = a.do(http.MethodGet, "/api/products?include_unavailable=true", owner, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(2), body["total"])

	status, body = a.do(http.MethodGet, "/api/products/mocha", owner, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, false, body["available"])

	status, _ = a.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
