package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound                   = errors.New("recurso no encontrado")
	ErrCatalogReferenceNotFound   = errors.New("referencia de catálogo no encontrada")
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrUnauthorized               = errors.New("no autorizado")
	ErrForbidden                  = errors.New("acceso denegado")
	ErrForbiddenOutletMismatch    = errors.New("el recurso pertenece a otro outlet")
	ErrConflict                   = errors.New("conflicto con el estado actual")
	ErrInsufficientStock          = errors.New("stock insuficiente")
	ErrInsufficientWarehouseStock = errors.New("stock de bodega insuficiente")
	ErrInsufficientOutletStock    = errors.New("stock de outlet insuficiente")
	ErrRequestAlreadyFinalized    = errors.New("la solicitud ya fue finalizada")
	ErrRequestAlreadyProcessed    = errors.New("la solicitud ya fue procesada")
	ErrAlreadyReceived            = errors.New("el despacho ya fue recibido")
	ErrTransientConflict          = errors.New("conflicto transitorio de bloqueo, reintente")
	ErrUploadFailed               = errors.New("fallo al subir el archivo")
)

// Sitios de un ledger de material.
const (
	SiteWarehouse = "warehouse"
	SiteOutlet    = "outlet"
)

// StockError describe un débito rechazado con el contexto necesario para un mensaje preciso.
// errors.Is lo empareja con ErrInsufficientStock y con el sentinel del sitio.
type StockError struct {
	Site       string
	OutletID   string
	MaterialID string
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

func (e *StockError) Error() string {
	if e.Site == SiteOutlet {
		return fmt.Sprintf("stock de outlet insuficiente: outlet=%s material=%s solicitado=%s disponible=%s",
			e.OutletID, e.MaterialID, e.Requested.String(), e.Available.String())
	}
	return fmt.Sprintf("stock de bodega insuficiente: material=%s solicitado=%s disponible=%s",
		e.MaterialID, e.Requested.String(), e.Available.String())
}

// Is permite errors.Is(err, ErrInsufficientStock) y el sentinel específico del sitio.
func (e *StockError) Is(target error) bool {
	switch target {
	case ErrInsufficientStock:
		return true
	case ErrInsufficientWarehouseStock:
		return e.Site == SiteWarehouse
	case ErrInsufficientOutletStock:
		return e.Site == SiteOutlet
	}
	return false
}

// NewWarehouseStockError construye el error de débito rechazado en bodega.
func NewWarehouseStockError(materialID string, requested, available decimal.Decimal) error {
	return &StockError{Site: SiteWarehouse, MaterialID: materialID, Requested: requested, Available: available}
}

// NewOutletStockError construye el error de débito rechazado en un outlet.
func NewOutletStockError(outletID, materialID string, requested, available decimal.Decimal) error {
	return &StockError{Site: SiteOutlet, OutletID: outletID, MaterialID: materialID, Requested: requested, Available: available}
}

// CatalogError identifica la referencia de catálogo ausente.
type CatalogError struct {
	Kind string // material | product | bom
	ID   string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("referencia de catálogo no encontrada: %s %s", e.Kind, e.ID)
}

func (e *CatalogError) Unwrap() error { return ErrCatalogReferenceNotFound }

// MissingCatalog construye un CatalogError.
func MissingCatalog(kind, id string) error {
	return &CatalogError{Kind: kind, ID: id}
}
