package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmind/internal/cache"
	"github.com/yourusername/betmind/internal/identity"
	"github.com/yourusername/betmind/internal/metrics"
	"github.com/yourusername/betmind/internal/models"
	"github.com/yourusername/betmind/internal/repair"
	"github.com/yourusername/betmind/internal/schedule"
	"github.com/yourusername/betmind/internal/store"
)

// ErrFixturesUnavailable is returned when nothing is cached for the day and
// the inference service could not list fixtures.
var ErrFixturesUnavailable = errors.New("fixtures unavailable")

// FixtureSource lists the fixtures of a civil day as raw text.
type FixtureSource interface {
	FetchFixtures(ctx context.Context, category, day string) (string, error)
}

// FixtureService lists the day's fixtures that have not expired
type FixtureService struct {
	source  FixtureSource
	cache   *cache.Cache[[]models.FixtureRef]
	gateway *store.Gateway
	writer  *store.Writer
	gate    *schedule.Gate
	logger  *logrus.Entry
	now     func() time.Time
}

// NewFixtureService creates the fixture listing service
func NewFixtureService(
	source FixtureSource,
	fixtures *cache.Cache[[]models.FixtureRef],
	gateway *store.Gateway,
	writer *store.Writer,
	gate *schedule.Gate,
	log *logrus.Logger,
) *FixtureService {
	return &FixtureService{
		source:  source,
		cache:   fixtures,
		gateway: gateway,
		writer:  writer,
		gate:    gate,
		logger:  log.WithField("component", "fixtures"),
		now:     time.Now,
	}
}

// ListFixtures returns the day's unexpired fixtures matching category
// ("all" or empty for every category), active ones first. Store problems
// never surface; an empty day falls back to the inference service.
func (s *FixtureService) ListFixtures(ctx context.Context, category string, refresh bool) ([]models.FixtureRef, error) {
	now := s.now().In(s.gate.Location())
	day := models.FixtureDay(now)

	var (
		fixtures []models.FixtureRef
		source   string
	)
	if !refresh {
		fixtures, source = s.cached(ctx, day)
	}

	if len(fixtures) == 0 {
		fetched, err := s.fetch(ctx, day)
		if err != nil {
			metrics.RecordFixtureListing("failed")
			return nil, fmt.Errorf("%w: %w", ErrFixturesUnavailable, err)
		}
		fixtures, source = fetched, "inference"
		if len(fixtures) > 0 {
			s.cache.Set(day, fixtures)
			s.writer.EnqueueFixtures(day, fixtures)
		}
	}

	out := s.present(fixtures, category, now)
	if len(out) == 0 {
		source = "empty"
	}
	metrics.RecordFixtureListing(source)
	s.logger.WithFields(logrus.Fields{
		"day":      day,
		"category": category,
		"source":   source,
		"count":    len(out),
	}).Debug("Fixtures listed")
	return out, nil
}

// Refresh reloads the day's fixtures from the inference service and returns
// how many are still open.
func (s *FixtureService) Refresh(ctx context.Context) (int, error) {
	fixtures, err := s.ListFixtures(ctx, models.CategoryAll, true)
	return len(fixtures), err
}

func (s *FixtureService) cached(ctx context.Context, day string) ([]models.FixtureRef, string) {
	if fixtures, ok := s.cache.Get(day); ok && len(fixtures) > 0 {
		return fixtures, "memory"
	}
	if fixtures, ok := s.gateway.GetFixtures(ctx, day); ok {
		s.cache.Set(day, fixtures)
		return fixtures, "remote"
	}
	return nil, ""
}

func (s *FixtureService) fetch(ctx context.Context, day string) ([]models.FixtureRef, error) {
	text, err := s.source.FetchFixtures(ctx, models.CategoryAll, day)
	if err != nil {
		return nil, err
	}
	records := repair.RepairFixtures(text)
	fixtures := make([]models.FixtureRef, 0, len(records))
	for _, r := range records {
		fixtures = append(fixtures, FixtureFromRecord(r))
	}
	return fixtures, nil
}

// present recomputes lifecycle state, drops expired fixtures, filters by
// category and orders the result. The cached slice is not modified.
func (s *FixtureService) present(fixtures []models.FixtureRef, category string, now time.Time) []models.FixtureRef {
	out := make([]models.FixtureRef, 0, len(fixtures))
	for _, f := range fixtures {
		if !f.MatchesCategory(category) {
			continue
		}
		state := s.gate.State(f.ScheduledDate, f.ScheduledTime, now)
		if state == models.StateExpired {
			continue
		}
		f.LifecycleState = state
		f.Trending = f.Trending || f.IsTrending()
		out = append(out, f)
	}
	schedule.SortFixtures(out)
	return out
}

// FixtureFromRecord builds a fixture from a repaired record.
func FixtureFromRecord(r map[string]any) models.FixtureRef {
	str := func(key string) string {
		s, _ := r[key].(string)
		return s
	}
	odds, _ := r[repair.FixtureQuickOdds].(float64)
	trending, _ := r["trending"].(bool)

	return NewFixture(
		str(repair.FixtureParticipantA),
		str(repair.FixtureParticipantB),
		str(repair.FixtureLeague),
		str(repair.FixtureSport),
		str(repair.FixtureDate),
		str(repair.FixtureTime),
		odds,
		trending,
	)
}

// NewFixture builds a fixture reference with its derived id and category.
func NewFixture(a, b, league, sport, date, clock string, quickOdds float64, trending bool) models.FixtureRef {
	f := models.FixtureRef{
		ID:             identity.MakeID(a, b),
		ParticipantA:   a,
		ParticipantB:   b,
		League:         league,
		Category:       models.DeriveCategory(league, sport),
		ScheduledDate:  date,
		ScheduledTime:  schedule.NormalizeClock(clock),
		LifecycleState: models.StateScheduled,
		QuickOdds:      quickOdds,
	}
	f.Trending = trending || f.IsTrending()
	return f
}
