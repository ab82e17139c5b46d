package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/application/sales"
	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	cashierO1  = entity.Actor{ID: "c-1", Role: entity.RoleCashier, OutletID: "o1"}
	cashierO2  = entity.Actor{ID: "c-2", Role: entity.RoleCashier, OutletID: "o2"}
	supervisor = entity.Actor{ID: "s-1", Role: entity.RoleSupervisor}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeStorage struct{ calls int }

func (s *fakeStorage) Upload(_ context.Context, folder string, _ []byte) (string, error) {
	s.calls++
	return "https://storage.test/" + folder + "/qris.jpg", nil
}

// newSales: outlet o1 con 40 de M y 5 de C; "latte" usa 2 M + 0.5 C, "espresso" usa 1 C.
func newSales(t *testing.T) (*memory.Store, *sales.SaleUseCase, *fakeStorage) {
	t.Helper()
	store := memory.NewStore()
	store.AddOutlet("o1", "Outlet Centro")
	store.AddOutlet("o2", "Outlet Norte")
	store.AddMaterial(entity.Material{ID: "M", Name: "Leche", Unit: "l"})
	store.AddMaterial(entity.Material{ID: "C", Name: "Café", Unit: "kg"})
	store.AddProduct(entity.Product{ID: "latte", Name: "Latte", Price: dec("25000"), Available: true, BOM: []entity.BOMEntry{
		{MaterialID: "M", Ratio: dec("2")},
		{MaterialID: "C", Ratio: dec("0.5")},
	}})
	store.AddProduct(entity.Product{ID: "espresso", Name: "Espresso", Price: dec("12000"), Available: true, BOM: []entity.BOMEntry{
		{MaterialID: "C", Ratio: dec("1")},
	}})
	store.AddProduct(entity.Product{ID: "agua", Name: "Agua", Price: dec("3000"), Available: true})
	store.SetStock(entity.OutletKey("o1", "M"), dec("40"))
	store.SetStock(entity.OutletKey("o1", "C"), dec("5"))

	storage := &fakeStorage{}
	uc := sales.NewSaleUseCase(store, store.Sales(), store.Revenue(), storage, nil, zerolog.Nop())
	return store, uc, storage
}

func outletQty(t *testing.T, store *memory.Store, outletID, materialID string) decimal.Decimal {
	t.Helper()
	row, err := store.Ledger().Get(context.Background(), entity.OutletKey(outletID, materialID))
	require.NoError(t, err)
	return row.Quantity
}

func assertOutlet(t *testing.T, store *memory.Store, outletID, materialID, want string) {
	t.Helper()
	got := outletQty(t, store, outletID, materialID)
	assert.True(t, dec(want).Equal(got), "%s/%s: esperado %s, obtenido %s", outletID, materialID, want, got)
}

func line(productID string, qty int64) dto.SaleLineRequest {
	return dto.SaleLineRequest{ProductID: productID, Quantity: qty}
}

// ──────────────────────────────────────────────────────────────────────────────
// Crear / eliminar
// ──────────────────────────────────────────────────────────────────────────────

func TestVenta_CrearYEliminarRestauraOutlet(t *testing.T) {
	store, uc, _ := newSales(t)
	ctx := context.Background()

	sale, err := uc.Create(ctx, cashierO1, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentMethodCash,
		Lines:         []dto.SaleLineRequest{line("latte", 1)},
	}, nil)
	require.NoError(t, err)
	assert.True(t, dec("25000").Equal(sale.Total), "total = precio del producto")
	assert.Equal(t, "o1", sale.OutletID)
	assert.Equal(t, cashierO1.ID, sale.CashierID)
	require.Len(t, sale.Lines, 1)
	assertOutlet(t, store, "o1", "M", "38")
	assertOutlet(t, store, "o1", "C", "4.5")

	rev, err := uc.DailyRevenue(ctx, cashierO1, "", sale.SoldAt.UTC().Format(time.DateOnly))
	require.NoError(t, err)
	assert.True(t, dec("25000").Equal(rev.Total))
	assert.Equal(t, int64(1), rev.SalesCount)

	require.NoError(t, uc.Delete(ctx, cashierO1, sale.ID))
	assertOutlet(t, store, "o1", "M", "40")
	assertOutlet(t, store, "o1", "C", "5")

	rev, err = uc.DailyRevenue(ctx, cashierO1, "", sale.SoldAt.UTC().Format(time.DateOnly))
	require.NoError(t, err)
	assert.True(t, rev.Total.IsZero())
	assert.Equal(t, int64(0), rev.SalesCount)

	_, err = uc.GetByID(ctx, cashierO1, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVenta_AgregaConsumoEntreLineas(t *testing.T) {
	store, uc, _ := newSales(t)

	sale, err := uc.Create(context.Background(), cashierO1, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentMethodCash,
		Lines:         []dto.SaleLineRequest{line("latte", 2), line("espresso", 1), line("latte", 1)},
	}, nil)
	require.NoError(t, err)
	assert.True(t, dec("87000").Equal(sale.Total))
	require.Len(t, sale.Consumption, 2)
	assertOutlet(t, store, "o1", "M", "34")  // 40 - 3×2
	assertOutlet(t, store, "o1", "C", "2.5") // 5 - 3×0.5 - 1
}

func TestVenta_AtomicaSiUnMaterialNoAlcanza(t *testing.T) {
	store, uc, _ := newSales(t)
	ctx := context.Background()

	// M alcanza (2×2=4 ≤ 40) pero C no (2×0.5 + 5 = 6 > 5)
	_, err := uc.Create(ctx, cashierO1, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentMethodCash,
		Lines:         []dto.SaleLineRequest{line("latte", 2), line("espresso", 5)},
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientOutletStock)

	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "C", se.MaterialID)
	assert.True(t, dec("6").Equal(se.Requested))
	assert.True(t, dec("5").Equal(se.Available))

	assertOutlet(t, store, "o1", "M", "40")
	assertOutlet(t, store, "o1", "C", "5")
	list, err := uc.List(ctx, cashierO1, "", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestVenta_Validaciones(t *testing.T) {
	_, uc, _ := newSales(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor entity.Actor
		in    dto.CreateSaleRequest
		want  error
	}{
		{"supervisor no vende", supervisor, dto.CreateSaleRequest{PaymentMethod: "cash", Lines: []dto.SaleLineRequest{line("latte", 1)}}, domain.ErrForbidden},
		{"método inválido", cashierO1, dto.CreateSaleRequest{PaymentMethod: "card", Lines: []dto.SaleLineRequest{line("latte", 1)}}, domain.ErrInvalidInput},
		{"sin líneas", cashierO1, dto.CreateSaleRequest{PaymentMethod: "cash"}, domain.ErrInvalidInput},
		{"cantidad cero", cashierO1, dto.CreateSaleRequest{PaymentMethod: "cash", Lines: []dto.SaleLineRequest{line("latte", 0)}}, domain.ErrInvalidInput},
		{"producto inexistente", cashierO1, dto.CreateSaleRequest{PaymentMethod: "cash", Lines: []dto.SaleLineRequest{line("mocha", 1)}}, domain.ErrCatalogReferenceNotFound},
		{"producto sin BOM", cashierO1, dto.CreateSaleRequest{PaymentMethod: "cash", Lines: []dto.SaleLineRequest{line("agua", 1)}}, domain.ErrCatalogReferenceNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tc.actor, tc.in, nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Actualizar
// ──────────────────────────────────────────────────────────────────────────────

func TestVenta_ActualizarRevierteYReaplica(t *testing.T) {
	store, uc, storage := newSales(t)
	ctx := context.Background()

	sale, err := uc.Create(ctx, cashierO1, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentMethodQRIS,
		Lines:         []dto.SaleLineRequest{line("latte", 2)},
	}, []byte("qris"))
	require.NoError(t, err)
	assert.NotEmpty(t, sale.PaymentProofURL)
	assertOutlet(t, store, "o1", "C", "4")

	// Nuevo pedido consume más C del que queda si no se devolviera el anterior
	updated, err := uc.Update(ctx, cashierO1, sale.ID, dto.UpdateSaleRequest{
		PaymentMethod: entity.PaymentMethodCash,
		Lines:         []dto.SaleLineRequest{line("espresso", 5)},
	}, nil)
	require.NoError(t, err)
	assert.True(t, dec("60000").Equal(updated.Total))
	assert.Empty(t, updated.PaymentProofURL, "pasar a efectivo elimina el comprobante")
	assertOutlet(t, store, "o1", "M", "40")
	assertOutlet(t, store, "o1", "C", "0")
	assert.Equal(t, 1, storage.calls)

	// Falla: se conserva la venta anterior y el ledger
	_, err = uc.Update(ctx, cashierO1, sale.ID, dto.UpdateSaleRequest{
		PaymentMethod: entity.PaymentMethodCash,
		Lines:         []dto.SaleLineRequest{line("espresso", 6)},
	}, nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientOutletStock)
	assertOutlet(t, store, "o1", "C", "0")
	got, err := uc.GetByID(ctx, cashierO1, sale.ID)
	require.NoError(t, err)
	assert.True(t, dec("60000").Equal(got.Total))

	rev, err := uc.DailyRevenue(ctx, cashierO1, "", got.SoldAt.UTC().Format(time.DateOnly))
	require.NoError(t, err)
	assert.True(t, dec("60000").Equal(rev.Total))
	assert.Equal(t, int64(1), rev.SalesCount)
}

func TestVenta_PermisosPorOutlet(t *testing.T) {
	_, uc, _ := newSales(t)
	ctx := context.Background()

	sale, err := uc.Create(ctx, cashierO1, dto.CreateSaleRequest{PaymentMethod: "cash", Lines: []dto.SaleLineRequest{line("espresso", 1)}}, nil)
	require.NoError(t, err)

	_, err = uc.Update(ctx, cashierO2, sale.ID, dto.UpdateSaleRequest{PaymentMethod: "cash", Lines: []dto.SaleLineRequest{line("espresso", 1)}}, nil)
	assert.ErrorIs(t, err, domain.ErrForbiddenOutletMismatch)
	assert.ErrorIs(t, uc.Delete(ctx, cashierO2, sale.ID), domain.ErrForbiddenOutletMismatch)
	_, err = uc.GetByID(ctx, cashierO2, sale.ID)
	assert.ErrorIs(t, err, domain.ErrForbiddenOutletMismatch)

	_, err = uc.List(ctx, supervisor, "", 20, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "oversight debe indicar el outlet")
	list, err := uc.List(ctx, supervisor, "o1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	require.NoError(t, uc.Delete(ctx, supervisor, sale.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// N ventas concurrentes que piden available/N tienen éxito; con N+1, al menos una falla.
func TestVenta_DebitosConcurrentes(t *testing.T) {
	const n = 8
	for _, extra := range []int{0, 1} {
		store, uc, _ := newSales(t)
		store.SetStock(entity.OutletKey("o1", "C"), dec("8")) // espresso usa 1 C

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			ok       int
			rejected int
		)
		for i := 0; i < n+extra; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := uc.Create(context.Background(), cashierO1, dto.CreateSaleRequest{
					PaymentMethod: "cash",
					Lines:         []dto.SaleLineRequest{line("espresso", 1)},
				}, nil)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, domain.ErrInsufficientOutletStock):
					rejected++
				default:
					t.Errorf("error inesperado: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, n, ok)
		assert.Equal(t, extra, rejected)
		assertOutlet(t, store, "o1", "C", "0")
	}
}
