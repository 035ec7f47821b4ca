// Package schedule decides where a fixture sits in its lifecycle from the
// civil date and time reported upstream.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/yourusername/betmind/internal/models"
)

const (
	DefaultTimezone     = "Europe/Paris"
	DefaultGraceWindow  = 240 * time.Minute
	DefaultActiveWindow = 150 * time.Minute
)

// Config holds the gate windows.
type Config struct {
	Timezone     string
	GraceWindow  time.Duration
	ActiveWindow time.Duration
}

// DefaultConfig returns the production windows.
func DefaultConfig() Config {
	return Config{
		Timezone:     DefaultTimezone,
		GraceWindow:  DefaultGraceWindow,
		ActiveWindow: DefaultActiveWindow,
	}
}

// Gate evaluates fixture kickoff times. All methods are total: input that
// cannot be parsed is reported as neither expired nor active.
type Gate struct {
	loc    *time.Location
	grace  time.Duration
	active time.Duration
}

// NewGate creates a gate for the configured civil timezone.
func NewGate(cfg Config) (*Gate, error) {
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = DefaultGraceWindow
	}
	if cfg.ActiveWindow <= 0 {
		cfg.ActiveWindow = DefaultActiveWindow
	}
	return &Gate{loc: loc, grace: cfg.GraceWindow, active: cfg.ActiveWindow}, nil
}

// Location returns the civil timezone of the gate.
func (g *Gate) Location() *time.Location {
	return g.loc
}

// IsExpired reports whether now is past kickoff plus the grace window.
func (g *Gate) IsExpired(date, clock string, now time.Time) bool {
	kickoff, ok := g.Kickoff(date, clock, now)
	if !ok {
		return false
	}
	return now.After(kickoff.Add(g.grace))
}

// IsActive reports whether now falls in [kickoff, kickoff+active window).
func (g *Gate) IsActive(date, clock string, now time.Time) bool {
	kickoff, ok := g.Kickoff(date, clock, now)
	if !ok {
		return false
	}
	return !now.Before(kickoff) && now.Before(kickoff.Add(g.active))
}

// State derives the lifecycle state. Expiry wins over activity.
func (g *Gate) State(date, clock string, now time.Time) models.LifecycleState {
	switch {
	case g.IsExpired(date, clock, now):
		return models.StateExpired
	case g.IsActive(date, clock, now):
		return models.StateActive
	default:
		return models.StateScheduled
	}
}

// Kickoff resolves date and clock against the civil year of now.
func (g *Gate) Kickoff(date, clock string, now time.Time) (time.Time, bool) {
	local := now.In(g.loc)

	year, month, day, ok := parseDate(date)
	if !ok {
		return time.Time{}, false
	}
	hour, minute, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}

	if year == 0 {
		year = local.Year()
		switch {
		case month == time.January && local.Month() == time.December:
			year++
		case month == time.December && local.Month() == time.January:
			year--
		}
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, g.loc)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// parseDate accepts DD/MM, DD-MM, DD.MM, DD/MM/YYYY and YYYY-MM-DD.
// A zero year means the caller picks one.
func parseDate(s string) (year int, month time.Month, day int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, 0, false
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}

	var d, m int
	switch {
	case len(parts) == 3 && len(parts[0]) == 4:
		year, m, d = nums[0], nums[1], nums[2]
	case len(parts) == 3:
		d, m, year = nums[0], nums[1], nums[2]
		if len(parts[2]) != 4 {
			return 0, 0, 0, false
		}
	default:
		d, m = nums[0], nums[1]
	}

	if m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, 0, false
	}
	return year, time.Month(m), d, true
}

// parseClock accepts HH:MM, HH:MM:SS, HHhMM and a bare hour. Seconds are
// validated and dropped.
func parseClock(s string) (hour, minute int, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, 0, false
	}
	s = strings.Replace(s, "h", ":", 1)
	hs, ms, _ := strings.Cut(s, ":")

	hour, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	ms, ss, hasSeconds := strings.Cut(strings.TrimSpace(ms), ":")
	if hasSeconds {
		sec, err := strconv.Atoi(ss)
		if err != nil || sec < 0 || sec > 59 || ms == "" {
			return 0, 0, false
		}
	}
	if ms != "" {
		minute, err = strconv.Atoi(ms)
		if err != nil || minute < 0 || minute > 59 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}
