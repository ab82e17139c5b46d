package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordIntakeRequest body para POST /api/intakes.
type RecordIntakeRequest struct {
	MaterialID string          `json:"material_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
	Supplier   string          `json:"supplier" validate:"required,max=200"`
	ReceivedAt *time.Time      `json:"received_at,omitempty"` // por defecto ahora
}

// UpdateIntakeRequest corrección administrativa de una recepción.
type UpdateIntakeRequest struct {
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	Supplier   *string          `json:"supplier,omitempty" validate:"omitempty,min=1,max=200"`
	ReceivedAt *time.Time       `json:"received_at,omitempty"`
}

// IntakeResponse recepción en respuestas.
type IntakeResponse struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Supplier   string          `json:"supplier"`
	ReceivedAt time.Time       `json:"received_at"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IntakeListResponse lista paginada de recepciones.
type IntakeListResponse struct {
	Items []IntakeResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// CreateStockRequestRequest body para POST /api/requests.
// OutletID es opcional: si viene, debe coincidir con el outlet del actor.
type CreateStockRequestRequest struct {
	OutletID   string          `json:"outlet_id,omitempty"`
	MaterialID string          `json:"material_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// StockRequestFilter query de GET /api/requests.
type StockRequestFilter struct {
	OutletID string `query:"outlet_id"`
	Status   string `query:"status" validate:"omitempty,oneof=requested approved dispatched received"`
}

// StockRequestResponse solicitud en respuestas.
type StockRequestResponse struct {
	ID          string          `json:"id"`
	OutletID    string          `json:"outlet_id"`
	MaterialID  string          `json:"material_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Status      string          `json:"status"`
	RequestedBy string          `json:"requested_by"`
	ApprovedBy  string          `json:"approved_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockRequestListResponse lista paginada de solicitudes.
type StockRequestListResponse struct {
	Items []StockRequestResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// CreateDispatchRequest body para POST /api/dispatches.
// Con RequestID, material y outlet salen de la solicitud y Quantity cero toma la cantidad pedida.
type CreateDispatchRequest struct {
	RequestID  string          `json:"request_id,omitempty"`
	MaterialID string          `json:"material_id,omitempty" validate:"required_without=RequestID"`
	OutletID   string          `json:"outlet_id,omitempty" validate:"required_without=RequestID"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// AmendDispatchRequest body para PATCH /api/dispatches/:id.
type AmendDispatchRequest struct {
	MaterialID *string          `json:"material_id,omitempty" validate:"omitempty,min=1"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
}

// DispatchFilter query de GET /api/dispatches.
type DispatchFilter struct {
	OutletID string `query:"outlet_id"`
	Status   string `query:"status" validate:"omitempty,oneof=sent received"`
}

// DispatchResponse despacho en respuestas.
type DispatchResponse struct {
	ID           string          `json:"id"`
	MaterialID   string          `json:"material_id"`
	OutletID     string          `json:"outlet_id"`
	RequestID    string          `json:"request_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Status       string          `json:"status"`
	ProofURL     string          `json:"proof_url,omitempty"`
	DispatchedBy string          `json:"dispatched_by"`
	ReceivedBy   string          `json:"received_by,omitempty"`
	DispatchedAt time.Time       `json:"dispatched_at"`
	ReceivedAt   *time.Time      `json:"received_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DispatchListResponse lista paginada de despachos.
type DispatchListResponse struct {
	Items []DispatchResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockQuery filtros de lectura de ledgers.
type StockQuery struct {
	OutletID     string `query:"outlet_id"`
	MaterialID   string `query:"material_id"`
	CriticalOnly bool   `query:"critical_only"`
}

// StockRowResponse fila de ledger con su estado frente al mínimo.
type StockRowResponse struct {
	OutletID     string          `json:"outlet_id,omitempty"` // vacío = bodega
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	Minimum      decimal.Decimal `json:"minimum"`
	Status       string          `json:"status"` // ok | critical
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StockListResponse filas de un ledger.
type StockListResponse struct {
	Items []StockRowResponse `json:"items"`
}

// ReplenishmentSuggestionDTO material de un outlet en estado crítico con la cantidad
// sugerida para la próxima solicitud.
type ReplenishmentSuggestionDTO struct {
	OutletID     string          `json:"outlet_id"`
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	Minimum      decimal.Decimal `json:"minimum"`
	IdealStock   decimal.Decimal `json:"ideal_stock"`   // Minimum * 1.5
	SuggestedQty decimal.Decimal `json:"suggested_qty"`  // IdealStock - CurrentStock - InTransitQty
	InTransitQty decimal.Decimal `json:"in_transit_qty"` // despachado y sin recibir
	WarehouseQty decimal.Decimal `json:"warehouse_qty"`  // disponible en bodega
	Pending      bool            `json:"pending"`        // solicitud abierta o material en camino
	Priority     int             `json:"priority"`      // 1 = más urgente
}
