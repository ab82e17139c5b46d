package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-outlets-api/internal/application/ports"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// Publish envía el evento después del commit. Un fallo no revierte nada: se registra.
func Publish(ctx context.Context, pub ports.EventPublisher, log zerolog.Logger, ev entity.StockEvent) {
	if pub == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Error().Err(err).Str("event", ev.Type).Str("entity_id", ev.EntityID).Msg("no se pudo publicar el evento")
	}
}
