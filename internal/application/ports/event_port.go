package ports

import (
	"context"

	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// EventPublisher publica hechos de negocio ya confirmados (después del commit)
// hacia el colaborador de reportes.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.StockEvent) error
}
