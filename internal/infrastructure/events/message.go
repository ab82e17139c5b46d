// Package events publica hechos de stock confirmados hacia el colaborador de reportes.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/entity"
)

// Message representación en el cable de un entity.StockEvent (JSON).
type Message struct {
	Type       string           `json:"type"`
	EntityID   string           `json:"entity_id"`
	OutletID   string           `json:"outlet_id,omitempty"`
	ActorID    string           `json:"actor_id,omitempty"`
	Postings   []PostingMessage `json:"postings"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// PostingMessage movimiento de ledger; delta positivo = crédito.
type PostingMessage struct {
	Site       string          `json:"site"`
	OutletID   string          `json:"outlet_id,omitempty"`
	MaterialID string          `json:"material_id"`
	Delta      decimal.Decimal `json:"delta"`
}

// Encode serializa el evento y devuelve la clave de partición: el outlet cuando existe,
// así los eventos de un mismo outlet conservan su orden.
func Encode(ev entity.StockEvent) (key []byte, value []byte, err error) {
	msg := Message{
		Type:       ev.Type,
		EntityID:   ev.EntityID,
		OutletID:   ev.OutletID,
		ActorID:    ev.ActorID,
		Postings:   make([]PostingMessage, 0, len(ev.Postings)),
		OccurredAt: ev.OccurredAt.UTC(),
	}
	for _, p := range ev.Postings {
		site := domain.SiteOutlet
		if p.Key.IsWarehouse() {
			site = domain.SiteWarehouse
		}
		msg.Postings = append(msg.Postings, PostingMessage{
			Site:       site,
			OutletID:   p.Key.OutletID,
			MaterialID: p.Key.MaterialID,
			Delta:      p.Delta,
		})
	}
	value, err = json.Marshal(msg)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal stock event: %w", err)
	}
	if ev.OutletID != "" {
		return []byte("outlet-" + ev.OutletID), value, nil
	}
	return []byte("warehouse"), value, nil
}
