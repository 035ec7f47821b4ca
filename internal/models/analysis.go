package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const (
	// NeutralRating replaces absent or non-finite rating components.
	NeutralRating = 50.0
	// NeutralTempo is the tempo midpoint; scores scale by tempo/NeutralTempo.
	NeutralTempo = 50.0
)

// RatingVector drives the outcome simulator. Components live in [0,100].
type RatingVector struct {
	AttackA  float64 `json:"attack_a"`
	DefenseA float64 `json:"defense_a"`
	AttackB  float64 `json:"attack_b"`
	DefenseB float64 `json:"defense_b"`
	Tempo    float64 `json:"tempo"`
}

// Normalized returns a copy with every component finite and clamped.
// A zero tempo is treated as absent.
func (r RatingVector) Normalized() RatingVector {
	out := RatingVector{
		AttackA:  clampRating(r.AttackA, NeutralRating),
		DefenseA: clampRating(r.DefenseA, NeutralRating),
		AttackB:  clampRating(r.AttackB, NeutralRating),
		DefenseB: clampRating(r.DefenseB, NeutralRating),
		Tempo:    clampRating(r.Tempo, NeutralTempo),
	}
	if r.Tempo == 0 {
		out.Tempo = NeutralTempo
	}
	return out
}

func clampRating(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return math.Max(0, math.Min(100, v))
}

// HistogramBin is one bucket of the score-differential histogram.
type HistogramBin struct {
	Differential int `json:"differential"`
	Count        int `json:"count"`
}

// ProjectedScore holds the rounded mean score of each side.
type ProjectedScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// OutcomeDistribution is the immutable result of one simulation run.
type OutcomeDistribution struct {
	HomeWinProbability float64        `json:"home_win_probability"`
	AwayWinProbability float64        `json:"away_win_probability"`
	DrawProbability    float64        `json:"draw_probability"`
	ProjectedScore     ProjectedScore `json:"projected_score"`
	Histogram          []HistogramBin `json:"histogram"`
	TotalTrials        int            `json:"total_trials"`
}

// Mode returns the histogram bin with the highest count. Ties resolve to the
// lower differential.
func (o *OutcomeDistribution) Mode() (HistogramBin, bool) {
	if len(o.Histogram) == 0 {
		return HistogramBin{}, false
	}
	best := o.Histogram[0]
	for _, b := range o.Histogram[1:] {
		if b.Count > best.Count {
			best = b
		}
	}
	return best, true
}

// Prediction is one betting recommendation.
type Prediction struct {
	Market      string  `json:"market"`
	Selection   string  `json:"selection"`
	Odds        float64 `json:"odds"`
	Confidence  float64 `json:"confidence"`
	StakeUnits  float64 `json:"stake_units"`
	Probability float64 `json:"probability"`
	Rationale   string  `json:"rationale"`
	Condition   string  `json:"condition"`
	Edge        float64 `json:"edge"`
}

// Scenario is a conditional forecast.
type Scenario struct {
	Condition  string `json:"condition"`
	Outcome    string `json:"outcome"`
	Likelihood string `json:"likelihood"`
	Reasoning  string `json:"reasoning"`
}

// Injury is one availability note.
type Injury struct {
	Player string `json:"player"`
	Status string `json:"status"`
	Impact string `json:"impact"`
}

// StatComparison contrasts one metric between the two sides.
type StatComparison struct {
	Label     string `json:"label"`
	ValueA    string `json:"value_a"`
	ValueB    string `json:"value_b"`
	Advantage string `json:"advantage"`
}

// TrueProbability is the forecaster's own outcome estimate, in percent.
type TrueProbability struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// MarketAnalysis describes how the betting market moved on the fixture.
type MarketAnalysis struct {
	PublicTrend  string  `json:"public_trend"`
	SharpMoney   string  `json:"sharp_money"`
	OpeningOdds  float64 `json:"opening_odds"`
	CurrentOdds  float64 `json:"current_odds"`
	OddsMovement string  `json:"odds_movement"`
	ValueStatus  string  `json:"value_status"`
}

// AnalysisArtifact is the persisted result of one analysis run.
// Every slice is non-nil once the artifact has been repaired.
type AnalysisArtifact struct {
	EntityID        string               `json:"entity_id"`
	Summary         string               `json:"summary"`
	ContrarianView  string               `json:"contrarian_view"`
	Weather         string               `json:"weather"`
	Referee         string               `json:"referee"`
	LiveScore       string               `json:"live_score"`
	MatchMinute     string               `json:"match_minute"`
	KeyFactors      []string             `json:"key_factors"`
	Injuries        []Injury             `json:"injuries"`
	Predictions     []Prediction         `json:"predictions"`
	Scenarios       []Scenario           `json:"scenarios"`
	StatComparisons []StatComparison     `json:"stat_comparisons"`
	TrueProbability *TrueProbability     `json:"true_probability,omitempty"`
	MarketAnalysis  *MarketAnalysis      `json:"market_analysis,omitempty"`
	Sources         []string             `json:"sources"`
	Ratings         *RatingVector        `json:"ratings,omitempty"`
	Outcome         *OutcomeDistribution `json:"outcome,omitempty"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// ArtifactFromTree converts a repaired tree into a typed artifact.
func ArtifactFromTree(tree map[string]any) (*AnalysisArtifact, error) {
	if tree == nil {
		return nil, ErrEmptyPayload
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis tree: %w", err)
	}
	var a AnalysisArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode analysis tree: %w", err)
	}
	a.ensureLists()
	return &a, nil
}

// DecodeArtifact parses a stored artifact document.
func DecodeArtifact(data []byte) (*AnalysisArtifact, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	var a AnalysisArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	a.ensureLists()
	return &a, nil
}

func (a *AnalysisArtifact) ensureLists() {
	if a.KeyFactors == nil {
		a.KeyFactors = []string{}
	}
	if a.Injuries == nil {
		a.Injuries = []Injury{}
	}
	if a.Predictions == nil {
		a.Predictions = []Prediction{}
	}
	if a.Scenarios == nil {
		a.Scenarios = []Scenario{}
	}
	if a.StatComparisons == nil {
		a.StatComparisons = []StatComparison{}
	}
	if a.Sources == nil {
		a.Sources = []string{}
	}
}
