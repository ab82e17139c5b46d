package ports

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// DeliveryNoteRenderer genera la nota de entrega (PDF) de un despacho.
type DeliveryNoteRenderer interface {
	RenderDeliveryNote(ctx context.Context, dispatch *entity.Dispatch, material *entity.Material) ([]byte, error)
}
