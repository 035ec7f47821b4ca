package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmind/internal/config"
	"github.com/yourusername/betmind/internal/database"
	"github.com/yourusername/betmind/internal/store/postgres"
	"github.com/yourusername/betmind/internal/store/redis"
)

// Open creates the backend selected by store.backend. It returns nil for
// the "none" backend. A backend that cannot be reached at startup is logged
// and replaced by nil so the process still serves from inference.
func Open(ctx context.Context, cfg *config.Config, log *logrus.Logger) (Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendNone:
		return nil, nil

	case config.BackendMemory:
		return NewMemoryBackend(), nil

	case config.BackendPostgres:
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			log.WithError(err).Warn("Postgres store unavailable, running without remote cache")
			return nil, nil
		}
		return postgres.New(db), nil

	case config.BackendRedis:
		s, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			log.WithError(err).Warn("Redis store unavailable, running without remote cache")
			return nil, nil
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
