package models

import (
	"strings"
	"time"
)

// Category is the scoring family of a fixture. It selects the simulation
// profile and the listing filter.
type Category string

const (
	CategoryFootball   Category = "football"
	CategoryBasketball Category = "basketball"
	CategoryOther      Category = "other"
)

// CategoryAll is the listing filter that matches every category.
const CategoryAll = "all"

// ParseCategory maps free text onto a known category. Unknown values map to
// CategoryOther.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "football", "soccer":
		return CategoryFootball
	case "basketball", "basket":
		return CategoryBasketball
	default:
		return CategoryOther
	}
}

// DeriveCategory classifies a listed fixture from its league and sport labels.
func DeriveCategory(league, sport string) Category {
	l := strings.ToLower(league)
	if strings.Contains(l, "nba") || strings.Contains(l, "basket") {
		return CategoryBasketball
	}
	if strings.EqualFold(strings.TrimSpace(sport), "basketball") {
		return CategoryBasketball
	}
	return CategoryFootball
}

// LifecycleState of a fixture relative to now.
type LifecycleState string

const (
	StateScheduled LifecycleState = "scheduled"
	StateActive    LifecycleState = "active"
	StateExpired   LifecycleState = "expired"
)

// TrendingOddsCeiling is the exclusive upper bound of quick odds flagged as trending.
const TrendingOddsCeiling = 2.5

// FixtureRef identifies a schedulable two-participant event.
// LifecycleState is recomputed on every listing and never persisted.
type FixtureRef struct {
	ID             string         `json:"id"`
	ParticipantA   string         `json:"participant_a"`
	ParticipantB   string         `json:"participant_b"`
	League         string         `json:"league"`
	Category       Category       `json:"category"`
	ScheduledDate  string         `json:"scheduled_date"`
	ScheduledTime  string         `json:"scheduled_time"`
	LifecycleState LifecycleState `json:"lifecycle_state"`
	QuickOdds      float64        `json:"quick_odds"`
	Trending       bool           `json:"trending"`
}

// IsTrending reports whether the quick odds fall inside the trending band.
func (f *FixtureRef) IsTrending() bool {
	return f.QuickOdds > 0 && f.QuickOdds < TrendingOddsCeiling
}

// MatchesCategory applies the listing filter. "all" and the empty string match
// everything.
func (f *FixtureRef) MatchesCategory(filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == CategoryAll {
		return true
	}
	return f.Category == ParseCategory(filter)
}

// FixtureDay is the civil day key used to partition the fixture cache.
func FixtureDay(now time.Time) string {
	return now.Format("2006-01-02")
}
