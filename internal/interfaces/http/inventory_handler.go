package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/application/inventory"
)

// InventoryHandler lectura de los ledgers de bodega y outlets.
type InventoryHandler struct {
	stock         *inventory.StockQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stock *inventory.StockQueryUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{stock: stock, replenishment: replenishment}
}

// WarehouseStock godoc
// @Summary      Stock de la bodega central
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        material_id    query  string  false  "filtrar por material"
// @Param        critical_only  query  bool    false  "sólo filas en o bajo el mínimo"
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stock/warehouse [get]
func (h *InventoryHandler) WarehouseStock(c *fiber.Ctx) error {
	var q dto.StockQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	out, err := h.stock.Warehouse(c.UserContext(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// OutletStock godoc
// @Summary      Stock de outlets
// @Description  El cajero sólo ve su outlet; owner, supervisor y bodega pueden filtrar por outlet_id.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        outlet_id      query  string  false  "filtrar por outlet"
// @Param        material_id    query  string  false  "filtrar por material"
// @Param        critical_only  query  bool    false  "sólo filas en o bajo el mínimo"
// @Success      200  {object}  dto.StockListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock/outlets [get]
func (h *InventoryHandler) OutletStock(c *fiber.Ctx) error {
	var q dto.StockQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	out, err := h.stock.Outlet(c.UserContext(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Sugerencias de reposición
// @Description  Materiales en estado crítico en un outlet con la cantidad sugerida a solicitar,
//
//	ordenados por cobertura (stock / mínimo) ascendente.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        outlet_id  query  string  false  "outlet (obligatorio salvo para el cajero)"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Router       /api/stock/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.Suggestions(c.UserContext(), GetActor(c), c.Query("outlet_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
