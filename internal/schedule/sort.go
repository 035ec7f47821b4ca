package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/betmind/internal/models"
)

// overnightCutoff: kickoffs before this hour belong to the previous evening's
// slate and sort after it.
const overnightCutoff = 10

// SortFixtures orders fixtures in place: active first, then by kickoff hour
// with overnight hours pushed to the end, then by the clock text.
func SortFixtures(fixtures []models.FixtureRef) {
	sort.SliceStable(fixtures, func(i, j int) bool {
		a, b := fixtures[i], fixtures[j]
		aActive := a.LifecycleState == models.StateActive
		bActive := b.LifecycleState == models.StateActive
		if aActive != bActive {
			return aActive
		}

		ha, hb := slateHour(a.ScheduledTime), slateHour(b.ScheduledTime)
		if ha != hb {
			return ha < hb
		}
		return a.ScheduledTime < b.ScheduledTime
	})
}

func slateHour(clock string) int {
	hour, _, ok := parseClock(clock)
	if !ok {
		return 48
	}
	if hour < overnightCutoff {
		return hour + 24
	}
	return hour
}

// NormalizeClock renders a parsable clock as HH:MM and leaves anything else
// untouched.
func NormalizeClock(clock string) string {
	hour, minute, ok := parseClock(clock)
	if !ok {
		return strings.TrimSpace(clock)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
