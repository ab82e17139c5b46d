package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
// HasMore indica si existe al menos un elemento después de esta página.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// TrimPage recorta un listado pedido con limit+1 filas y arma sus metadatos.
func TrimPage[T any](items []T, limit, offset int) ([]T, PageResponse) {
	page := PageResponse{Limit: limit, Offset: offset}
	if len(items) > limit {
		items = items[:limit]
		page.HasMore = true
	}
	return items, page
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
