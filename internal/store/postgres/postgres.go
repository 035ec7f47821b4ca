// Package postgres stores fixtures and analysis artifacts in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/betmind/internal/database"
	"github.com/yourusername/betmind/internal/models"
)

const dayLayout = "2006-01-02"

// Store implements the remote store backend on the fixture_cache and
// analysis_cache tables.
type Store struct {
	db *database.DB
}

// New creates a store over an open connection pool.
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Name identifies the backend in logs
func (s *Store) Name() string {
	return "postgres"
}

// GetAnalysis retrieves an artifact by entity id
func (s *Store) GetAnalysis(ctx context.Context, entityID string) (*models.AnalysisArtifact, error) {
	query := `SELECT artifact FROM analysis_cache WHERE entity_id = $1`

	var data []byte
	err := s.db.QueryRow(ctx, query, entityID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	artifact, err := models.DecodeArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode analysis %s: %w", entityID, err)
	}
	return artifact, nil
}

// PutAnalysis upserts an artifact by entity id
func (s *Store) PutAnalysis(ctx context.Context, artifact *models.AnalysisArtifact) error {
	if artifact.EntityID == "" {
		return models.ErrInvalidID
	}
	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	query := `
		INSERT INTO analysis_cache (entity_id, artifact, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (entity_id) DO UPDATE
		SET artifact = EXCLUDED.artifact, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.Exec(ctx, query, artifact.EntityID, data); err != nil {
		return fmt.Errorf("failed to upsert analysis: %w", err)
	}
	return nil
}

// GetFixtures retrieves the fixtures cached for a civil day
func (s *Store) GetFixtures(ctx context.Context, day string) ([]models.FixtureRef, error) {
	cacheDay, err := time.Parse(dayLayout, day)
	if err != nil {
		return nil, fmt.Errorf("invalid cache day %q: %w", day, err)
	}

	query := `
		SELECT id, participant_a, participant_b, league, category, date, time, quick_odds
		FROM fixture_cache
		WHERE cache_day = $1
		ORDER BY time, id
	`
	rows, err := s.db.Query(ctx, query, cacheDay)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []models.FixtureRef
	for rows.Next() {
		var (
			f        models.FixtureRef
			category string
			odds     *float64
		)
		if err := rows.Scan(&f.ID, &f.ParticipantA, &f.ParticipantB, &f.League,
			&category, &f.ScheduledDate, &f.ScheduledTime, &odds); err != nil {
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		f.Category = models.ParseCategory(category)
		if odds != nil {
			f.QuickOdds = *odds
		}
		fixtures = append(fixtures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return nil, models.ErrNotFound
	}
	return fixtures, nil
}

// PutFixtures upserts the day's fixtures in one transaction
func (s *Store) PutFixtures(ctx context.Context, day string, fixtures []models.FixtureRef) error {
	cacheDay, err := time.Parse(dayLayout, day)
	if err != nil {
		return fmt.Errorf("invalid cache day %q: %w", day, err)
	}
	if len(fixtures) == 0 {
		return nil
	}

	query := `
		INSERT INTO fixture_cache
			(id, participant_a, participant_b, league, category, date, time, quick_odds, cache_day, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			participant_a = EXCLUDED.participant_a,
			participant_b = EXCLUDED.participant_b,
			league = EXCLUDED.league,
			category = EXCLUDED.category,
			date = EXCLUDED.date,
			time = EXCLUDED.time,
			quick_odds = EXCLUDED.quick_odds,
			cache_day = EXCLUDED.cache_day,
			cached_at = EXCLUDED.cached_at
	`

	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, f := range fixtures {
			if f.ID == "" {
				return models.ErrInvalidID
			}
			var odds *float64
			if f.QuickOdds > 0 {
				o := f.QuickOdds
				odds = &o
			}
			batch.Queue(query, f.ID, f.ParticipantA, f.ParticipantB, f.League,
				string(f.Category), f.ScheduledDate, f.ScheduledTime, odds, cacheDay)
		}

		results := tx.SendBatch(ctx, batch)
		for range fixtures {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert fixture: %w", err)
			}
		}
		return results.Close()
	})
}

// Ping verifies connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the pool
func (s *Store) Close() error {
	s.db.Close()
	return nil
}
