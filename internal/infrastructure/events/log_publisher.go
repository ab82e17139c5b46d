package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-outlets-api/internal/application/ports"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/metrics"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher publicador sin broker: deja cada evento en el log (desarrollo local).
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher construye el publicador.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "event_log").Logger()}
}

// Publish registra el evento en Info.
func (p *LogPublisher) Publish(_ context.Context, ev entity.StockEvent) error {
	_, value, err := Encode(ev)
	if err != nil {
		return err
	}
	metrics.EventsPublishedTotal.WithLabelValues(ev.Type, "logged").Inc()
	p.log.Info().RawJSON("event", value).Msg(ev.Type)
	return nil
}
