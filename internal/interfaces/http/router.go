package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-outlets-api/internal/application/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/application/sales"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IntakeUC        *inventory.IntakeUseCase
	RequestUC       *inventory.RequestUseCase
	DispatchUC      *inventory.DispatchUseCase
	StockUC         *inventory.StockQueryUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	SaleUC          *sales.SaleUseCase
	ProductUC       *sales.ProductQueryUseCase
	JWTSecret       string
	// Idempotency es opcional: nil deshabilita la cabecera Idempotency-Key.
	Idempotency idempotencyStore
}

const (
	owner      = entity.RoleOwner
	supervisor = entity.RoleSupervisor
	warehouse  = entity.RoleWarehouse
	cashier    = entity.RoleCashier
)

// Router registra las rutas de la API. Todas requieren Bearer Token.
// RequireRole filtra por rol; la pertenencia al outlet la verifica cada caso de uso.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	if deps.Idempotency != nil {
		api.Use(IdempotencyMiddleware(deps.Idempotency))
	}

	anyRole := RequireRole(owner, supervisor, warehouse, cashier)
	warehouseOnly := RequireRole(warehouse)
	cashierOnly := RequireRole(cashier)
	oversightOrWarehouse := RequireRole(owner, supervisor, warehouse)

	// Recepciones en bodega
	intakes := api.Group("/intakes")
	intakeHandler := NewIntakeHandler(deps.IntakeUC)
	intakes.Post("/", warehouseOnly, intakeHandler.Record)
	intakes.Get("/", oversightOrWarehouse, intakeHandler.List)
	intakes.Get("/:id", oversightOrWarehouse, intakeHandler.GetByID)
	intakes.Patch("/:id", warehouseOnly, intakeHandler.Update)
	intakes.Delete("/:id", warehouseOnly, intakeHandler.Delete)

	// Solicitudes de stock
	requests := api.Group("/requests")
	requestHandler := NewRequestHandler(deps.RequestUC)
	requests.Post("/", cashierOnly, requestHandler.Create)
	requests.Get("/", anyRole, requestHandler.List)
	requests.Get("/:id", anyRole, requestHandler.GetByID)
	requests.Post("/:id/approve", warehouseOnly, requestHandler.Approve)
	requests.Post("/:id/receive", RequireRole(warehouse, cashier), requestHandler.Receive)

	// Despachos
	dispatches := api.Group("/dispatches")
	dispatchHandler := NewDispatchHandler(deps.DispatchUC)
	dispatches.Post("/", warehouseOnly, dispatchHandler.Create)
	dispatches.Get("/", anyRole, dispatchHandler.List)
	dispatches.Get("/:id", anyRole, dispatchHandler.GetByID)
	dispatches.Get("/:id/note", anyRole, dispatchHandler.DeliveryNote)
	dispatches.Post("/:id/receive", RequireRole(warehouse, cashier), dispatchHandler.Receive)
	dispatches.Patch("/:id", warehouseOnly, dispatchHandler.Amend)
	dispatches.Delete("/:id", warehouseOnly, dispatchHandler.Delete)

	// Ventas
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	salesGroup.Post("/", cashierOnly, saleHandler.Create)
	salesGroup.Get("/", RequireRole(owner, supervisor, cashier), saleHandler.List)
	salesGroup.Get("/:id", RequireRole(owner, supervisor, cashier), saleHandler.GetByID)
	salesGroup.Put("/:id", cashierOnly, saleHandler.Update)
	salesGroup.Delete("/:id", RequireRole(owner, supervisor, cashier), saleHandler.Delete)
	api.Get("/revenue/daily", RequireRole(owner, supervisor, cashier), saleHandler.DailyRevenue)

	// Catálogo de productos
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/:id", anyRole, productHandler.GetByID)

	// Lectura de ledgers
	stock := api.Group("/stock")
	inventoryHandler := NewInventoryHandler(deps.StockUC, deps.ReplenishmentUC)
	stock.Get("/warehouse", oversightOrWarehouse, inventoryHandler.WarehouseStock)
	stock.Get("/outlets", anyRole, inventoryHandler.OutletStock)
	stock.Get("/replenishment", anyRole, inventoryHandler.GetReplenishmentList)
}
