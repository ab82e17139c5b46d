package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/application/inventory"
)

// DispatchHandler despachos bodega → outlet.
type DispatchHandler struct {
	uc *inventory.DispatchUseCase
}

// NewDispatchHandler construye el handler.
func NewDispatchHandler(uc *inventory.DispatchUseCase) *DispatchHandler {
	return &DispatchHandler{uc: uc}
}

// Create godoc
// @Summary      Crear despacho
// @Description  Debita la bodega; si request_id viene informado atiende esa solicitud.
// @Tags         dispatches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDispatchRequest  true  "request_id o material_id + outlet_id + quantity"
// @Success      201   {object}  dto.DispatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dispatches [post]
func (h *DispatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDispatchRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Receive godoc
// @Summary      Confirmar recepción de despacho
// @Description  Acredita el outlet. Acepta multipart/form-data con la foto de entrega en el campo "proof".
// @Tags         dispatches
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        id     path      string  true   "ID del despacho"
// @Param        proof  formData  file    false  "comprobante de entrega"
// @Success      200    {object}  dto.DispatchResponse
// @Failure      403    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Failure      502    {object}  dto.ErrorResponse
// @Router       /api/dispatches/{id}/receive [post]
func (h *DispatchHandler) Receive(c *fiber.Ctx) error {
	proof, err := readProof(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Receive(c.UserContext(), GetActor(c), c.Params("id"), proof)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Amend godoc
// @Summary      Corregir despacho
// @Description  Corrige cantidad o material con una transacción compensatoria.
// @Tags         dispatches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del despacho"
// @Param        body  body  dto.AmendDispatchRequest  true  "material_id, quantity"
// @Success      200  {object}  dto.DispatchResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/dispatches/{id} [patch]
func (h *DispatchHandler) Amend(c *fiber.Ctx) error {
	var in dto.AmendDispatchRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Amend(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar despacho
// @Description  Revierte los efectos del despacho y lo elimina. Si atendía una solicitud, ésta vuelve a requested.
// @Tags         dispatches
// @Security     Bearer
// @Param        id  path  string  true  "ID del despacho"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/dispatches/{id} [delete]
func (h *DispatchHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Obtener despacho
// @Description  Devuelve un despacho.
// @Tags         dispatches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del despacho"
// @Success      200  {object}  dto.DispatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dispatches/{id} [get]
func (h *DispatchHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar despachos
// @Description  Despachos filtrados por outlet y estado.
// @Tags         dispatches
// @Security     Bearer
// @Produce      json
// @Param        outlet_id  query  string  false  "filtrar por outlet"
// @Param        status     query  string  false  "sent, received"
// @Param        limit      query  int     false  "máximo 100"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {object}  dto.DispatchListResponse
// @Router       /api/dispatches [get]
func (h *DispatchHandler) List(c *fiber.Ctx) error {
	var filter dto.DispatchFilter
	if err := parseQuery(c, &filter); err != nil {
		return writeError(c, err)
	}
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), filter, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeliveryNote descarga la nota de entrega en PDF.
// @Router /api/dispatches/{id}/note [get]
func (h *DispatchHandler) DeliveryNote(c *fiber.Ctx) error {
	id := c.Params("id")
	doc, err := h.uc.DeliveryNote(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="nota-`+id+`.pdf"`)
	return c.Send(doc)
}
