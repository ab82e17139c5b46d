package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/application/sales"
)

// SaleHandler ventas de outlet y su consumo de material.
type SaleHandler struct {
	uc *sales.SaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Debita del outlet del cajero el consumo agregado de los BOM (todo o nada).
// @Description  Con pago qris puede enviarse multipart/form-data: "payload" (JSON) + "proof" (foto).
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "payment_method, lines"
// @Success      201   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := parsePayload(c, &in); err != nil {
		return writeError(c, err)
	}
	proof, err := readProof(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in, proof)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Reemplazar venta
// @Description  Revierte el consumo anterior y aplica el nuevo en la misma transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleRequest  true  "payment_method, lines"
// @Success      200   {object}  dto.SaleResponse
// @Router       /api/sales/{id} [put]
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSaleRequest
	if err := parsePayload(c, &in); err != nil {
		return writeError(c, err)
	}
	proof, err := readProof(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), in, proof)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar venta
// @Description  Devuelve el consumo al outlet y elimina la venta.
// @Tags         sales
// @Security     Bearer
// @Param        id  path  string  true  "ID de la venta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Obtener venta
// @Description  Devuelve una venta con líneas y consumo.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas de un outlet
// @Description  Ventas de un outlet (?outlet_id=, obligatorio salvo para el cajero).
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        outlet_id  query  string  false  "outlet (obligatorio salvo para el cajero)"
// @Param        limit      query  int     false  "máximo 100"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), c.Query("outlet_id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DailyRevenue godoc
// @Summary      Ingreso diario de un outlet
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        outlet_id  query  string  false  "outlet (obligatorio salvo para el cajero)"
// @Param        day        query  string  false  "AAAA-MM-DD, por defecto hoy (UTC)"
// @Success      200        {object}  dto.DailyRevenueResponse
// @Router       /api/revenue/daily [get]
func (h *SaleHandler) DailyRevenue(c *fiber.Ctx) error {
	out, err := h.uc.DailyRevenue(c.UserContext(), GetActor(c), c.Query("outlet_id"), c.Query("day"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
