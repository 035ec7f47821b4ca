package repair

import (
	"github.com/spf13/cast"
)

// Keys of a repaired fixture record.
const (
	FixtureParticipantA = "participant_a"
	FixtureParticipantB = "participant_b"
	FixtureLeague       = "league"
	FixtureSport        = "sport"
	FixtureDate         = "date"
	FixtureTime         = "time"
	FixtureQuickOdds    = "quick_odds"
)

var fixtureListKeys = []string{"fixtures", "matches", "events", "games"}

// RepairFixtures returns the repaired fixture records found in raw. Records
// without any participant name are dropped; duplicates of the same pairing
// keep the first occurrence.
func RepairFixtures(raw any) []map[string]any {
	items := fixtureItems(raw, maxUnwrap)

	out := make([]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if f, ok := repairFixture(m); ok {
			out = append(out, f)
		}
	}
	out = dedup(out, func(v any) string {
		f := v.(map[string]any)
		return f[FixtureParticipantA].(string) + "|" + f[FixtureParticipantB].(string)
	})

	fixtures := make([]map[string]any, len(out))
	for i, f := range out {
		fixtures[i] = f.(map[string]any)
	}
	return fixtures
}

func fixtureItems(raw any, depth int) []any {
	switch x := raw.(type) {
	case []any:
		return x
	case map[string]any:
		if list, ok := lookup(x, fixtureListKeys...).([]any); ok {
			return list
		}
		return []any{x}
	case string:
		if depth > 0 {
			if v, err := Decode(x); err == nil {
				return fixtureItems(v, depth-1)
			}
		}
	}
	return nil
}

func repairFixture(m map[string]any) (map[string]any, bool) {
	a, okA := toText(lookup(m, FixtureParticipantA, "homeTeam", "home_team", "home", "teamA"))
	b, okB := toText(lookup(m, FixtureParticipantB, "awayTeam", "away_team", "away", "teamB"))
	if !okA && !okB {
		return nil, false
	}

	f := map[string]any{
		FixtureParticipantA: a,
		FixtureParticipantB: b,
		FixtureLeague:       text(lookup(m, FixtureLeague, "competition")),
		FixtureSport:        optionalText(lookup(m, FixtureSport, "category")),
		FixtureDate:         optionalText(lookup(m, FixtureDate, "scheduled_date")),
		FixtureTime:         optionalText(lookup(m, FixtureTime, "scheduled_time", "kickoff")),
		FixtureQuickOdds:    number(lookup(m, FixtureQuickOdds, "quickOdds", "odds"), 0, 1000, 0),
	}
	if t, err := cast.ToBoolE(lookup(m, "trending", "isTrending")); err == nil && t {
		f["trending"] = true
	}
	return f, true
}

func optionalText(v any) string {
	s, _ := toText(v)
	return s
}
