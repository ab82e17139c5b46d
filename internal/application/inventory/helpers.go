package inventory

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
)

func requireMaterial(ctx context.Context, catalog repository.CatalogRepository, id string) error {
	m, err := catalog.GetMaterial(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.MissingCatalog("material", id)
	}
	return nil
}

func requireOutlet(ctx context.Context, catalog repository.CatalogRepository, id string) error {
	ok, err := catalog.OutletExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// isBusinessError distingue rechazos de negocio (Warn) de fallas de infraestructura (Error).
func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrCatalogReferenceNotFound,
		domain.ErrForbidden, domain.ErrForbiddenOutletMismatch, domain.ErrInsufficientStock,
		domain.ErrConflict, domain.ErrRequestAlreadyFinalized, domain.ErrRequestAlreadyProcessed,
		domain.ErrAlreadyReceived,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// LogFailure registra una operación abortada con el nivel que corresponde al error.
func LogFailure(log zerolog.Logger, op string, err error) {
	ev := log.Error()
	if isBusinessError(err) {
		ev = log.Warn()
	}
	ev.Err(err).Str("op", op).Msg("operación rechazada")
}

func page(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
