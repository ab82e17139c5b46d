package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/stock-outlets-api/internal/application/dto"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/idempotency"
)

// HeaderIdempotencyKey cabecera opcional que hace seguro reintentar una mutación.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

// idempotencyStore contrato que necesita el middleware; lo implementa *idempotency.RedisStore.
type idempotencyStore interface {
	Lookup(ctx context.Context, key string) (*idempotency.Response, error)
	Lock(ctx context.Context, key string) (idempotency.Unlocker, error)
	Save(ctx context.Context, key string, resp idempotency.Response) error
}

// IdempotencyMiddleware reproduce la respuesta de una mutación ya ejecutada con la misma
// Idempotency-Key (por usuario, método y ruta). Debe usarse DESPUÉS de AuthMiddleware.
//   - Sin cabecera o GET → pasa sin cambios.
//   - Clave en curso     → 409 IDEMPOTENCY_IN_PROGRESS.
//   - Sólo se guardan respuestas 2xx.
func IdempotencyMiddleware(store idempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(HeaderIdempotencyKey)
		if header == "" || c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}
		ctx := c.UserContext()
		key := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + header

		if cached, err := store.Lookup(ctx, key); err != nil {
			log.Warn().Err(err).Msg("idempotencia: lookup falló, se procesa sin guarda")
			return c.Next()
		} else if cached != nil {
			return replay(c, cached)
		}

		lock, err := store.Lock(ctx, key)
		if err != nil {
			if errors.Is(err, idempotency.ErrInProgress) {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
					Code:    "IDEMPOTENCY_IN_PROGRESS",
					Message: "una petición con la misma Idempotency-Key se está procesando",
				})
			}
			log.Warn().Err(err).Msg("idempotencia: lock falló, se procesa sin guarda")
			return c.Next()
		}
		defer func() { _ = lock.Release(context.Background()) }()

		// Otra réplica pudo terminar entre el lookup y el lock.
		if cached, err := store.Lookup(ctx, key); err == nil && cached != nil {
			return replay(c, cached)
		}

		if err := c.Next(); err != nil {
			return err
		}
		status := c.Response().StatusCode()
		if status >= 200 && status < 300 {
			resp := idempotency.Response{
				Status:      status,
				ContentType: string(c.Response().Header.ContentType()),
				Body:        append([]byte(nil), c.Response().Body()...),
			}
			if err := store.Save(ctx, key, resp); err != nil {
				log.Warn().Err(err).Msg("idempotencia: no se pudo guardar la respuesta")
			}
		}
		return nil
	}
}

func replay(c *fiber.Ctx, r *idempotency.Response) error {
	c.Set(headerReplayed, "true")
	if r.ContentType != "" {
		c.Set(fiber.HeaderContentType, r.ContentType)
	}
	return c.Status(r.Status).Send(r.Body)
}
