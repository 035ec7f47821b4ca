// Package redis stores fixtures and analysis artifacts in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/betmind/internal/config"
	"github.com/yourusername/betmind/internal/models"
)

const defaultFixtureTTL = 48 * time.Hour

// Store keeps each artifact under its own key and each day's fixtures in a
// hash keyed by fixture id.
type Store struct {
	client     *redis.Client
	prefix     string
	fixtureTTL time.Duration
}

// New connects to redis and checks the connection.
func New(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, cfg.KeyPrefix, cfg.FixtureTTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string, fixtureTTL time.Duration) *Store {
	if fixtureTTL <= 0 {
		fixtureTTL = defaultFixtureTTL
	}
	return &Store{client: client, prefix: prefix, fixtureTTL: fixtureTTL}
}

func (s *Store) Name() string {
	return "redis"
}

func (s *Store) analysisKey(entityID string) string {
	return s.prefix + "analysis:" + entityID
}

func (s *Store) fixturesKey(day string) string {
	return s.prefix + "fixtures:" + day
}

// GetAnalysis retrieves an artifact by entity id
func (s *Store) GetAnalysis(ctx context.Context, entityID string) (*models.AnalysisArtifact, error) {
	data, err := s.client.Get(ctx, s.analysisKey(entityID)).Bytes()
	if errors.Is(err, redis.Nil) {
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

// PutAnalysis overwrites the artifact for its entity id
func (s *Store) PutAnalysis(ctx context.Context, artifact *models.AnalysisArtifact) error {
	if artifact.EntityID == "" {
		return models.ErrInvalidID
	}
	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	return s.client.Set(ctx, s.analysisKey(artifact.EntityID), data, 0).Err()
}

// GetFixtures returns every fixture stored for the day
func (s *Store) GetFixtures(ctx context.Context, day string) ([]models.FixtureRef, error) {
	fields, err := s.client.HGetAll(ctx, s.fixturesKey(day)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get fixtures: %w", err)
	}
	if len(fields) == 0 {
		return nil, models.ErrNotFound
	}

	fixtures := make([]models.FixtureRef, 0, len(fields))
	for id, raw := range fields {
		var f models.FixtureRef
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, fmt.Errorf("failed to decode fixture %s: %w", id, err)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// PutFixtures upserts fixtures by id and refreshes the day's expiry
func (s *Store) PutFixtures(ctx context.Context, day string, fixtures []models.FixtureRef) error {
	if len(fixtures) == 0 {
		return nil
	}
	values := make([]any, 0, len(fixtures)*2)
	for _, f := range fixtures {
		if f.ID == "" {
			return models.ErrInvalidID
		}
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("failed to marshal fixture: %w", err)
		}
		values = append(values, f.ID, data)
	}

	key := s.fixturesKey(day)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		pipe.Expire(ctx, key, s.fixtureTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store fixtures: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
