package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/application/inventory"
)

// IntakeHandler recepciones de proveedor en la bodega central.
type IntakeHandler struct {
	uc *inventory.IntakeUseCase
}

// NewIntakeHandler construye el handler.
func NewIntakeHandler(uc *inventory.IntakeUseCase) *IntakeHandler {
	return &IntakeHandler{uc: uc}
}

// Record godoc
// @Summary      Registrar recepción en bodega
// @Description  Acredita el ledger de bodega con la cantidad recibida del proveedor.
// @Tags         intakes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordIntakeRequest  true  "material_id, quantity, supplier"
// @Success      201   {object}  dto.IntakeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/intakes [post]
func (h *IntakeHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordIntakeRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Record(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Corregir recepción
// @Tags         intakes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la recepción"
// @Param        body  body  dto.UpdateIntakeRequest  true  "campos a corregir"
// @Success      200   {object}  dto.IntakeResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/intakes/{id} [patch]
func (h *IntakeHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateIntakeRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar recepción
// @Description  Revierte el crédito de la recepción y la elimina.
// @Tags         intakes
// @Security     Bearer
// @Param        id  path  string  true  "ID de la recepción"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/intakes/{id} [delete]
func (h *IntakeHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Obtener recepción
// @Description  Devuelve una recepción.
// @Tags         intakes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.IntakeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/intakes/{id} [get]
func (h *IntakeHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar recepciones
// @Description  Recepciones, opcionalmente de un material (?material_id=).
// @Tags         intakes
// @Security     Bearer
// @Produce      json
// @Param        material_id  query  string  false  "filtrar por material"
// @Param        limit        query  int     false  "máximo 100"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {object}  dto.IntakeListResponse
// @Router       /api/intakes [get]
func (h *IntakeHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), c.Query("material_id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
