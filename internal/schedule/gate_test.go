package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betmind/internal/models"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(DefaultConfig())
	require.NoError(t, err)
	return g
}

func paris(t *testing.T, year int, month time.Month, day, hour, min, sec int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	return time.Date(year, month, day, hour, min, sec, 0, loc)
}

// TestGate_IsExpired_GraceBoundary tests the one-second edges of the grace window
func TestGate_IsExpired_GraceBoundary(t *testing.T) {
	g := newTestGate(t)
	boundary := paris(t, 2026, time.March, 15, 20, 0, 0).Add(DefaultGraceWindow)

	formats := []struct{ date, clock string }{
		{"15/03", "20:00"},
		{"15-03", "20h00"},
		{"15.03", "20h"},
		{"2026-03-15", "20:00"},
		{"15/03/2026", "20:00"},
		{"15/03", "20:00:00"},
		{"2026-03-15", "20:00:59"},
	}
	for _, f := range formats {
		assert.False(t, g.IsExpired(f.date, f.clock, boundary.Add(-time.Second)), "%v before", f)
		assert.False(t, g.IsExpired(f.date, f.clock, boundary), "%v at", f)
		assert.True(t, g.IsExpired(f.date, f.clock, boundary.Add(time.Second)), "%v after", f)
	}
}

func TestGate_IsExpired_YearRollover(t *testing.T) {
	g := newTestGate(t)

	// New Year's morning, fixture listed for the previous evening.
	now := paris(t, 2026, time.January, 1, 10, 0, 0)
	assert.True(t, g.IsExpired("31/12", "20:00", now))

	// New Year's Eve, fixture listed for the next day.
	now = paris(t, 2025, time.December, 31, 23, 0, 0)
	assert.False(t, g.IsExpired("01/01", "20:00", now))
	assert.False(t, g.IsActive("01/01", "20:00", now))

	kickoff, ok := g.Kickoff("01/01", "20:00", now)
	require.True(t, ok)
	assert.Equal(t, 2026, kickoff.Year())
}

func TestGate_Unparsable(t *testing.T) {
	g := newTestGate(t)
	now := paris(t, 2026, time.March, 15, 12, 0, 0)

	inputs := []struct{ date, clock string }{
		{"", "20:00"},
		{"15/03", ""},
		{"tomorrow", "20:00"},
		{"32/03", "20:00"},
		{"15/13", "20:00"},
		{"31/02", "20:00"},
		{"15/03", "25:00"},
		{"15/03", "20:75"},
		{"15/03", "TBD"},
		{"15/03", "20:00:75"},
		{"15/03", "20:00:xx"},
		{"15/03", "20::00"},
		{"1/2/3/4", "20:00"},
	}
	for _, in := range inputs {
		assert.False(t, g.IsExpired(in.date, in.clock, now), "%v", in)
		assert.False(t, g.IsActive(in.date, in.clock, now), "%v", in)
		assert.Equal(t, models.StateScheduled, g.State(in.date, in.clock, now), "%v", in)
	}
}

func TestGate_Kickoff_WithSeconds(t *testing.T) {
	g := newTestGate(t)
	now := paris(t, 2026, time.March, 15, 12, 0, 0)

	kickoff, ok := g.Kickoff("15/03", "20:45:00", now)
	require.True(t, ok)
	assert.True(t, paris(t, 2026, time.March, 15, 20, 45, 0).Equal(kickoff), kickoff)

	assert.True(t, g.IsExpired("15/03", "20:45:00", kickoff.Add(DefaultGraceWindow+time.Second)))
}

func TestGate_IsActive_Window(t *testing.T) {
	g := newTestGate(t)
	kickoff := paris(t, 2026, time.March, 15, 20, 0, 0)

	assert.False(t, g.IsActive("15/03", "20:00", kickoff.Add(-time.Second)))
	assert.True(t, g.IsActive("15/03", "20:00", kickoff))
	assert.True(t, g.IsActive("15/03", "20:00", kickoff.Add(DefaultActiveWindow-time.Second)))
	assert.False(t, g.IsActive("15/03", "20:00", kickoff.Add(DefaultActiveWindow)))
}

func TestGate_State(t *testing.T) {
	g := newTestGate(t)
	kickoff := paris(t, 2026, time.March, 15, 20, 0, 0)

	assert.Equal(t, models.StateScheduled, g.State("15/03", "20:00", kickoff.Add(-time.Hour)))
	assert.Equal(t, models.StateActive, g.State("15/03", "20:00", kickoff.Add(time.Hour)))
	assert.Equal(t, models.StateExpired, g.State("15/03", "20:00", kickoff.Add(5*time.Hour)))
}

func TestGate_UsesCivilTimezone(t *testing.T) {
	g := newTestGate(t)
	// 19:30 UTC is 20:30 in Paris during winter time.
	now := time.Date(2026, time.February, 10, 19, 30, 0, 0, time.UTC)
	assert.True(t, g.IsActive("10/02", "20:00", now))
}

func TestNewGate_InvalidTimezone(t *testing.T) {
	_, err := NewGate(Config{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}

func TestNewGate_CustomWindows(t *testing.T) {
	g, err := NewGate(Config{GraceWindow: time.Hour, ActiveWindow: 30 * time.Minute})
	require.NoError(t, err)

	kickoff := paris(t, 2026, time.March, 15, 20, 0, 0)
	assert.True(t, g.IsExpired("15/03", "20:00", kickoff.Add(time.Hour+time.Second)))
	assert.False(t, g.IsActive("15/03", "20:00", kickoff.Add(30*time.Minute)))
}
