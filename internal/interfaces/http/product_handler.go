package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/application/sales"
)

// ProductHandler catálogo de productos de sólo lectura.
type ProductHandler struct {
	uc *sales.ProductQueryUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *sales.ProductQueryUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// List godoc
// @Summary      Listar productos
// @Description  Productos disponibles con su BOM. Owner y supervisor pueden incluir los retirados.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        include_unavailable  query     bool  false  "incluir productos no disponibles (owner, supervisor)"
// @Success      200                  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var q dto.ProductQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
