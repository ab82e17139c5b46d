package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-outlets-api/internal/application/ports"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-outlets-api/pkg/config"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher escribe cada evento como un mensaje JSON en el topic configurado.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

// NewKafkaPublisher crea el writer (la conexión se abre en el primer envío).
func NewKafkaPublisher(cfg config.KafkaConfig, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  10 * time.Second,
		},
		log: log.With().Str("component", "kafka_publisher").Str("topic", cfg.Topic).Logger(),
	}
}

// Publish envía el evento; el llamador decide qué hacer con el error (nunca revierte el commit).
func (p *KafkaPublisher) Publish(ctx context.Context, ev entity.StockEvent) error {
	key, value, err := Encode(ev)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value, Time: ev.OccurredAt})
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(ev.Type, "failed").Inc()
		return fmt.Errorf("write kafka message: %w", err)
	}
	metrics.EventsPublishedTotal.WithLabelValues(ev.Type, "ok").Inc()
	p.log.Debug().Str("type", ev.Type).Str("entity_id", ev.EntityID).Msg("evento publicado")
	return nil
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
