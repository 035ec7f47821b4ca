package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/betmind/internal/models"
)

func TestSortFixtures(t *testing.T) {
	fixtures := []models.FixtureRef{
		{ID: "late-nba", ScheduledTime: "02:00"},
		{ID: "evening", ScheduledTime: "21:00"},
		{ID: "afternoon", ScheduledTime: "15:30"},
		{ID: "live", ScheduledTime: "20:00", LifecycleState: models.StateActive},
		{ID: "afternoon-early", ScheduledTime: "15:00"},
		{ID: "garbage", ScheduledTime: "TBD"},
	}

	SortFixtures(fixtures)

	ids := make([]string, len(fixtures))
	for i, f := range fixtures {
		ids[i] = f.ID
	}
	assert.Equal(t, []string{"live", "afternoon-early", "afternoon", "evening", "late-nba", "garbage"}, ids)
}

func TestNormalizeClock(t *testing.T) {
	assert.Equal(t, "20:30", NormalizeClock("20h30"))
	assert.Equal(t, "09:00", NormalizeClock("9h"))
	assert.Equal(t, "TBD", NormalizeClock(" TBD "))
}
