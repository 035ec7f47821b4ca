package simulation

import "github.com/yourusername/betmind/internal/models"

// Profile holds the scoring constants of one category. The trial loop has no
// other category-specific behaviour.
type Profile struct {
	Baseline    float64
	StdDev      float64
	PowerFactor float64
	// BinWidth groups differentials in the histogram.
	BinWidth int
	// NoDraws nudges the home score on a rounded tie.
	NoDraws bool
	// UseTempo scales both scores by tempo/50.
	UseTempo bool
}

// FootballProfile is the low-scoring default.
var FootballProfile = Profile{
	Baseline:    1.3,
	StdDev:      1.2,
	PowerFactor: 0.03,
	BinWidth:    1,
}

// BasketballProfile is the high-scoring, continuous-clock default.
var BasketballProfile = Profile{
	Baseline:    100,
	StdDev:      12,
	PowerFactor: 0.5,
	BinWidth:    2,
	NoDraws:     true,
	UseTempo:    true,
}

// DefaultProfiles returns the built-in profile table. Unknown categories use
// the football profile.
func DefaultProfiles() map[models.Category]Profile {
	return map[models.Category]Profile{
		models.CategoryFootball:   FootballProfile,
		models.CategoryBasketball: BasketballProfile,
		models.CategoryOther:      FootballProfile,
	}
}

func (p Profile) binWidth() int {
	if p.BinWidth < 1 {
		return 1
	}
	return p.BinWidth
}
