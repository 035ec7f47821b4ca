package repair

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/betmind/internal/models"
)

// Keys of the repaired analysis tree.
const (
	KeyEntityID        = "entity_id"
	KeySummary         = "summary"
	KeyContrarianView  = "contrarian_view"
	KeyWeather         = "weather"
	KeyReferee         = "referee"
	KeyKeyFactors      = "key_factors"
	KeyInjuries        = "injuries"
	KeyPredictions     = "predictions"
	KeyScenarios       = "scenarios"
	KeyStatComparisons = "stat_comparisons"
	KeyTrueProbability = "true_probability"
	KeyRatings         = "ratings"
	KeyLiveScore       = "live_score"
	KeyMatchMinute     = "match_minute"
	KeyMarketAnalysis  = "market_analysis"
	KeySources         = "sources"
)

const (
	DefaultConfidence  = 50.0
	DefaultStakeUnits  = 1.0
	DefaultOdds        = 0.0
	DefaultProbability = 50.0
	DefaultLikelihood  = "Medium"

	maxStakeUnits = 100.0
)

// fieldNormalizer reads one field from src and writes its repaired form to dst.
// Normalizers are independent: a corrupt field never affects another.
type fieldNormalizer func(src, dst map[string]any)

var analysisNormalizers = []fieldNormalizer{
	normalizeEntityID,
	textField(KeySummary, "summary", "analysis"),
	textField(KeyContrarianView, "contrarian_view", "contrarianView"),
	textField(KeyWeather, "weather"),
	textField(KeyReferee, "referee"),
	textField(KeyLiveScore, "live_score", "liveScore", "score"),
	textField(KeyMatchMinute, "match_minute", "matchMinute", "minute"),
	normalizeKeyFactors,
	normalizeInjuries,
	normalizePredictions,
	normalizeScenarios,
	normalizeStatComparisons,
	normalizeTrueProbability,
	normalizeMarketAnalysis,
	normalizeSources,
	normalizeRatings,
}

func normalizeEntityID(src, dst map[string]any) {
	if id, ok := toText(lookup(src, KeyEntityID, "entityId", "matchId", "match_id")); ok {
		dst[KeyEntityID] = id
	}
}

func textField(key string, aliases ...string) fieldNormalizer {
	return func(src, dst map[string]any) {
		dst[key] = text(lookup(src, aliases...))
	}
}

var factorTextKeys = []string{"factor", "text", "title", "label", "description"}

func normalizeKeyFactors(src, dst map[string]any) {
	out := make([]any, 0)
	for _, item := range asList(lookup(src, KeyKeyFactors, "keyFactors", "factors")) {
		if m, ok := item.(map[string]any); ok {
			item = lookup(m, factorTextKeys...)
		}
		if s, ok := toText(item); ok && present(s) {
			out = append(out, s)
		}
	}
	dst[KeyKeyFactors] = dedup(out, func(v any) string { return v.(string) })
}

func normalizeInjuries(src, dst map[string]any) {
	out := make([]any, 0)
	for _, item := range asList(lookup(src, KeyInjuries, "absences")) {
		inj := map[string]any{"status": Placeholder, "impact": Placeholder}
		switch x := item.(type) {
		case map[string]any:
			inj["player"] = text(lookup(x, "player", "name"))
			inj["status"] = text(lookup(x, "status"))
			inj["impact"] = text(lookup(x, "impact"))
		default:
			inj["player"] = text(x)
		}
		if present(inj["player"].(string)) {
			out = append(out, inj)
		}
	}
	dst[KeyInjuries] = dedup(out, func(v any) string { return v.(map[string]any)["player"].(string) })
}

func normalizePredictions(src, dst map[string]any) {
	out := make([]any, 0)
	for _, item := range asList(lookup(src, KeyPredictions, "tips", "bets")) {
		var m map[string]any
		switch x := item.(type) {
		case map[string]any:
			m = x
		case string:
			m = map[string]any{"selection": x}
		default:
			continue
		}
		out = append(out, repairPrediction(m))
	}
	dst[KeyPredictions] = out
}

func repairPrediction(m map[string]any) map[string]any {
	odds := number(lookup(m, "odds", "price"), 0, math.MaxFloat64, DefaultOdds)
	prob := number(lookup(m, "probability", "prob"), 0, 100, DefaultProbability)
	return map[string]any{
		"market":      text(lookup(m, "market", "betType", "bet_type", "type")),
		"selection":   text(lookup(m, "selection", "pick")),
		"odds":        odds,
		"confidence":  number(lookup(m, "confidence"), 0, 100, DefaultConfidence),
		"stake_units": number(lookup(m, "stake_units", "units", "stake"), 0, maxStakeUnits, DefaultStakeUnits),
		"probability": prob,
		"rationale":   text(lookup(m, "rationale", "reasoning", "reason")),
		"condition":   text(lookup(m, "condition")),
		"edge":        Edge(prob, odds),
	}
}

// Edge is the expected return per unit staked, probability/100*odds - 1,
// rounded to three places.
func Edge(probability, odds float64) float64 {
	e := decimal.NewFromFloat(probability).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromFloat(odds)).
		Sub(decimal.NewFromInt(1)).
		Round(3)
	f, _ := e.Float64()
	return f
}

var (
	connectorPattern = regexp.MustCompile(`(?i)\s*,?\s*(?:\bthen\b|\balors\b|=>|->)\s*`)
	colonPattern     = regexp.MustCompile(`\s*:\s*`)
)

// splitScenario lifts a bare sentence into condition and outcome on the first
// connector word. A colon only splits when no connector word is present.
func splitScenario(s string) (condition, outcome string) {
	s = strings.TrimSpace(s)
	loc := connectorPattern.FindStringIndex(s)
	if loc == nil {
		loc = colonPattern.FindStringIndex(s)
	}
	if loc == nil {
		return s, Placeholder
	}
	condition = strings.TrimSpace(strings.TrimRight(s[:loc[0]], ", "))
	outcome = strings.TrimSpace(s[loc[1]:])
	switch {
	case condition == "" && outcome == "":
		return s, Placeholder
	case condition == "":
		return outcome, Placeholder
	case outcome == "":
		return condition, Placeholder
	}
	return condition, outcome
}

func normalizeLikelihood(v any) string {
	s, ok := toText(v)
	if !ok {
		return DefaultLikelihood
	}
	switch l := strings.ToLower(s); {
	case strings.HasPrefix(l, "h"), strings.HasPrefix(l, "él"), strings.HasPrefix(l, "fort"):
		return "High"
	case strings.HasPrefix(l, "l"), strings.HasPrefix(l, "fai"), strings.HasPrefix(l, "bas"):
		return "Low"
	default:
		return DefaultLikelihood
	}
}

func normalizeScenarios(src, dst map[string]any) {
	out := make([]any, 0)
	for _, item := range asList(lookup(src, KeyScenarios)) {
		sc := map[string]any{"likelihood": DefaultLikelihood, "reasoning": Placeholder}
		switch x := item.(type) {
		case string:
			if strings.TrimSpace(x) == "" {
				continue
			}
			sc["condition"], sc["outcome"] = splitScenario(x)
		case map[string]any:
			sc["condition"] = text(lookup(x, "condition", "if", "trigger"))
			sc["outcome"] = text(lookup(x, "outcome", "then", "result"))
			sc["likelihood"] = normalizeLikelihood(lookup(x, "likelihood", "probability"))
			sc["reasoning"] = text(lookup(x, "reasoning", "rationale"))
		default:
			continue
		}
		if !present(sc["condition"].(string)) && !present(sc["outcome"].(string)) {
			continue
		}
		out = append(out, sc)
	}
	dst[KeyScenarios] = out
}

func normalizeAdvantage(v any) string {
	s, _ := toText(v)
	switch strings.ToLower(s) {
	case "home", "a", "player1", "domicile":
		return "home"
	case "away", "b", "player2", "exterieur", "extérieur":
		return "away"
	default:
		return "equal"
	}
}

func normalizeStatComparisons(src, dst map[string]any) {
	out := make([]any, 0)
	for _, item := range asList(lookup(src, KeyStatComparisons, "statComparisons", "advancedStats", "advanced_stats")) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		label, ok := toText(lookup(m, "label", "stat", "name"))
		if !ok {
			continue
		}
		out = append(out, map[string]any{
			"label":     label,
			"value_a":   text(lookup(m, "value_a", "homeValue", "home_value", "valueA", "home")),
			"value_b":   text(lookup(m, "value_b", "awayValue", "away_value", "valueB", "away")),
			"advantage": normalizeAdvantage(lookup(m, "advantage")),
		})
	}
	dst[KeyStatComparisons] = dedup(out, func(v any) string { return v.(map[string]any)["label"].(string) })
}

func normalizeTrueProbability(src, dst map[string]any) {
	m, ok := lookup(src, KeyTrueProbability, "trueProbability").(map[string]any)
	if !ok {
		return
	}
	dst[KeyTrueProbability] = map[string]any{
		"home": number(m["home"], 0, 100, 0),
		"draw": number(m["draw"], 0, 100, 0),
		"away": number(m["away"], 0, 100, 0),
	}
}

// normalizeMarketAnalysis repairs the market movement block. It is omitted
// when the producer sent none.
func normalizeMarketAnalysis(src, dst map[string]any) {
	m, ok := lookup(src, KeyMarketAnalysis, "marketAnalysis").(map[string]any)
	if !ok {
		return
	}
	dst[KeyMarketAnalysis] = map[string]any{
		"public_trend":  text(lookup(m, "public_trend", "publicTrend")),
		"sharp_money":   text(lookup(m, "sharp_money", "sharpMoney")),
		"opening_odds":  number(lookup(m, "opening_odds", "openingOdds"), 0, math.MaxFloat64, DefaultOdds),
		"current_odds":  number(lookup(m, "current_odds", "currentOdds"), 0, math.MaxFloat64, DefaultOdds),
		"odds_movement": text(lookup(m, "odds_movement", "oddsMovement")),
		"value_status":  text(lookup(m, "value_status", "valueStatus")),
	}
}

var sourceTextKeys = []string{"url", "uri", "title", "name"}

func normalizeSources(src, dst map[string]any) {
	out := make([]any, 0)
	for _, item := range asList(lookup(src, KeySources, "citations")) {
		if m, ok := item.(map[string]any); ok {
			item = lookup(m, sourceTextKeys...)
		}
		if s, ok := toText(item); ok && present(s) {
			out = append(out, s)
		}
	}
	dst[KeySources] = dedup(out, func(v any) string { return v.(string) })
}

var ratingKeys = [][]string{
	{"attack_a", "attackA", "homeAttack", "home_attack"},
	{"defense_a", "defenseA", "homeDefense", "home_defense"},
	{"attack_b", "attackB", "awayAttack", "away_attack"},
	{"defense_b", "defenseB", "awayDefense", "away_defense"},
	{"tempo", "pace"},
}

const neutralRating = 50.0

// normalizeRatings accepts an object or a positional list of four or five
// numbers. The field is omitted when the producer supplied neither.
func normalizeRatings(src, dst map[string]any) {
	if out, ok := repairRatings(lookup(src, KeyRatings, "simulationInputs", "simulation_inputs")); ok {
		dst[KeyRatings] = out
	}
}

func repairRatings(raw any) (map[string]any, bool) {
	out := make(map[string]any, len(ratingKeys))
	switch x := raw.(type) {
	case map[string]any:
		for _, keys := range ratingKeys {
			out[keys[0]] = number(lookup(x, keys...), 0, 100, neutralRating)
		}
	case []any:
		if len(x) < 4 || len(x) > 5 {
			return nil, false
		}
		for i, keys := range ratingKeys {
			var v any
			if i < len(x) {
				v = x[i]
			}
			out[keys[0]] = number(v, 0, 100, neutralRating)
		}
	default:
		return nil, false
	}
	return out, true
}

// Ratings coerces a loosely typed rating block into a vector. Missing or
// unreadable fields take the neutral rating. When raw is neither an object
// nor a positional list the result is fully neutral and ok is false.
func Ratings(raw any) (models.RatingVector, bool) {
	out, ok := repairRatings(raw)
	if !ok {
		return models.RatingVector{
			AttackA: neutralRating, DefenseA: neutralRating,
			AttackB: neutralRating, DefenseB: neutralRating,
			Tempo: neutralRating,
		}, false
	}
	return models.RatingVector{
		AttackA:  out["attack_a"].(float64),
		DefenseA: out["defense_a"].(float64),
		AttackB:  out["attack_b"].(float64),
		DefenseB: out["defense_b"].(float64),
		Tempo:    out["tempo"].(float64),
	}, true
}
