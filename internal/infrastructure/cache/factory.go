package cache

import (
	"fmt"

	"github.com/halo/backend/internal/domain/shared"
	"github.com/halo/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the idempotency store selected by the
// configuration. When Redis is configured but unreachable it falls back
// to the in-memory store, since losing cross-instance dedupe is better
// than refusing to start: the database unique indexes still guarantee
// correctness.
func NewIdempotencyStore(cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Idempotency.Backend {
	case "redis":
		store, err := NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			logger.Warn("redis idempotency store unavailable, falling back to in-memory",
				zap.String("addr", cfg.Redis.Addr()),
				zap.Error(err),
			)
			return NewInMemoryIdempotencyStore(), nil
		}
		logger.Info("using redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
		return store, nil
	case "memory":
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Idempotency.Backend)
	}
}
