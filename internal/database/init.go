package database

import (
	"context"
	"fmt"

	"github.com/yourusername/betmind/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS fixture_cache (
	id            TEXT PRIMARY KEY,
	participant_a TEXT NOT NULL,
	participant_b TEXT NOT NULL,
	league        TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL,
	date          TEXT NOT NULL DEFAULT '',
	time          TEXT NOT NULL DEFAULT '',
	quick_odds    DOUBLE PRECISION,
	cache_day     DATE NOT NULL,
	cached_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_fixture_cache_day_category
	ON fixture_cache (cache_day, category);

CREATE TABLE IF NOT EXISTS analysis_cache (
	entity_id  TEXT PRIMARY KEY,
	artifact   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Initialize creates a connection pool and makes sure the cache tables exist
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the fixture and analysis cache tables if missing
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create cache schema: %w", err)
	}
	return nil
}
