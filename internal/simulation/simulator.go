// Package simulation turns rating vectors into outcome distributions by
// Monte Carlo.
package simulation

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/betmind/internal/models"
)

const (
	DefaultTrials            = 10000
	DefaultParallelThreshold = 200000

	// chunkTrials is the unit of parallel work. Chunk boundaries depend only on
	// the trial count so seeded runs do not vary with the worker count.
	chunkTrials = 50000
)

// Config configures the simulator
type Config struct {
	Trials int
	// Seed makes every run reproducible when non-zero.
	Seed              int64
	ParallelThreshold int
	Workers           int
	Profiles          map[models.Category]Profile
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Trials:            DefaultTrials,
		ParallelThreshold: DefaultParallelThreshold,
		Profiles:          DefaultProfiles(),
	}
}

// Simulator runs outcome simulations. It holds no mutable state and is safe
// for concurrent use.
type Simulator struct {
	cfg Config
}

// NewSimulator creates a simulator. Missing profiles fall back to the defaults.
func NewSimulator(cfg Config) *Simulator {
	if cfg.Trials <= 0 {
		cfg.Trials = DefaultTrials
	}
	if cfg.ParallelThreshold <= 0 {
		cfg.ParallelThreshold = DefaultParallelThreshold
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	profiles := DefaultProfiles()
	for c, p := range cfg.Profiles {
		profiles[c] = p
	}
	cfg.Profiles = profiles
	return &Simulator{cfg: cfg}
}

// Profile returns the profile used for category.
func (s *Simulator) Profile(category models.Category) Profile {
	if p, ok := s.cfg.Profiles[category]; ok {
		return p
	}
	return s.cfg.Profiles[models.CategoryFootball]
}

// Simulate runs trials (the configured default when <= 0) and returns the
// distribution.
func (s *Simulator) Simulate(ratings models.RatingVector, category models.Category, trials int) models.OutcomeDistribution {
	out, _ := s.SimulateContext(context.Background(), ratings, category, trials)
	return out
}

// SimulateContext is Simulate with cancellation for large parallel runs.
func (s *Simulator) SimulateContext(ctx context.Context, ratings models.RatingVector, category models.Category, trials int) (models.OutcomeDistribution, error) {
	if trials <= 0 {
		trials = s.cfg.Trials
	}
	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	profile := s.Profile(category)
	r := ratings.Normalized()

	if trials <= s.cfg.ParallelThreshold {
		t := newTally()
		t.run(rand.New(rand.NewSource(seed)), profile, r, trials)
		return t.distribution(profile.binWidth()), nil
	}

	chunks := (trials + chunkTrials - 1) / chunkTrials
	tallies := make([]*tally, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := 0; i < chunks; i++ {
		i := i
		n := chunkTrials
		if i == chunks-1 {
			n = trials - i*chunkTrials
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := newTally()
			t.run(rand.New(rand.NewSource(chunkSeed(seed, i))), profile, r, n)
			tallies[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.OutcomeDistribution{}, err
	}

	total := newTally()
	for _, t := range tallies {
		total.merge(t)
	}
	return total.distribution(profile.binWidth()), nil
}

// chunkSeed derives an independent seed per chunk (splitmix64 finalizer).
func chunkSeed(seed int64, chunk int) int64 {
	z := uint64(seed) + uint64(chunk+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// normalPair draws two independent standard normals from two uniforms.
func normalPair(rng *rand.Rand) (float64, float64) {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	radius := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	return radius * math.Cos(theta), radius * math.Sin(theta)
}

type tally struct {
	trials       int
	home, away   int
	draw         int
	sumA, sumB   int64
	differential map[int]int
}

func newTally() *tally {
	return &tally{differential: make(map[int]int)}
}

func (t *tally) run(rng *rand.Rand, p Profile, r models.RatingVector, n int) {
	scale := 1.0
	if p.UseTempo {
		scale = r.Tempo / models.NeutralTempo
	}
	meanA := p.Baseline + (r.AttackA-r.DefenseB)*p.PowerFactor
	meanB := p.Baseline + (r.AttackB-r.DefenseA)*p.PowerFactor

	for i := 0; i < n; i++ {
		z1, z2 := normalPair(rng)
		a := (meanA + z1*p.StdDev) * scale
		b := (meanB + z2*p.StdDev) * scale

		sa := int(math.Round(math.Max(0, a)))
		sb := int(math.Round(math.Max(0, b)))
		if p.NoDraws && sa == sb {
			sa++
		}
		t.add(sa, sb)
	}
}

func (t *tally) add(a, b int) {
	t.trials++
	t.sumA += int64(a)
	t.sumB += int64(b)
	switch {
	case a > b:
		t.home++
	case a < b:
		t.away++
	default:
		t.draw++
	}
	t.differential[a-b]++
}

func (t *tally) merge(o *tally) {
	t.trials += o.trials
	t.home += o.home
	t.away += o.away
	t.draw += o.draw
	t.sumA += o.sumA
	t.sumB += o.sumB
	for d, c := range o.differential {
		t.differential[d] += c
	}
}

func (t *tally) distribution(binWidth int) models.OutcomeDistribution {
	out := models.OutcomeDistribution{
		TotalTrials: t.trials,
		Histogram:   histogram(t.differential, binWidth),
	}
	if t.trials == 0 {
		return out
	}
	n := float64(t.trials)
	out.HomeWinProbability = float64(t.home) / n * 100
	out.AwayWinProbability = float64(t.away) / n * 100
	out.DrawProbability = float64(t.draw) / n * 100
	out.ProjectedScore = models.ProjectedScore{
		A: int(math.Round(float64(t.sumA) / n)),
		B: int(math.Round(float64(t.sumB) / n)),
	}
	return out
}

// histogram buckets differentials into bins of binWidth starting at the
// minimum observed differential. Empty bins are omitted.
func histogram(diffs map[int]int, binWidth int) []models.HistogramBin {
	if len(diffs) == 0 {
		return []models.HistogramBin{}
	}
	minDiff := math.MaxInt
	for d := range diffs {
		if d < minDiff {
			minDiff = d
		}
	}

	bins := make(map[int]int)
	for d, c := range diffs {
		start := minDiff + ((d-minDiff)/binWidth)*binWidth
		bins[start] += c
	}

	out := make([]models.HistogramBin, 0, len(bins))
	for d, c := range bins {
		out = append(out, models.HistogramBin{Differential: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Differential < out[j].Differential })
	return out
}
