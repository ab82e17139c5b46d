// Package idempotency guarda respuestas de mutaciones HTTP por Idempotency-Key en Redis.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-outlets-api/pkg/config"
)

// ErrInProgress otra petición con la misma clave se está procesando.
var ErrInProgress = errors.New("petición con la misma Idempotency-Key en curso")

// Response respuesta HTTP almacenada para reproducirla en reintentos.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Unlocker libera el candado de una clave.
type Unlocker interface {
	Release(ctx context.Context) error
}

// RedisStore respuestas en "idem:resp:<key>" y candados redislock en "idem:lock:<key>".
type RedisStore struct {
	rdb     *redis.Client
	locker  *redislock.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisStore conecta con Redis y verifica la conexión.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{
		rdb:     rdb,
		locker:  redislock.New(rdb),
		ttl:     cfg.IdempotencyTTL,
		lockTTL: cfg.LockTTL,
	}, nil
}

func responseKey(key string) string { return "idem:resp:" + key }
func lockKey(key string) string     { return "idem:lock:" + key }

// Lookup devuelve la respuesta guardada o nil si la clave es nueva.
func (s *RedisStore) Lookup(ctx context.Context, key string) (*Response, error) {
	raw, err := s.rdb.Get(ctx, responseKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode idempotent response: %w", err)
	}
	return &resp, nil
}

// Lock adquiere el candado de la clave; ErrInProgress si otro proceso lo tiene.
func (s *RedisStore) Lock(ctx context.Context, key string) (Unlocker, error) {
	lock, err := s.locker.Obtain(ctx, lockKey(key), s.lockTTL, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrInProgress
		}
		return nil, fmt.Errorf("redis lock: %w", err)
	}
	return lock, nil
}

// Save guarda la respuesta durante el TTL configurado.
func (s *RedisStore) Save(ctx context.Context, key string, resp Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode idempotent response: %w", err)
	}
	if err := s.rdb.Set(ctx, responseKey(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close cierra el cliente Redis.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
