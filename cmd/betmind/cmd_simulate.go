package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/betmind/internal/models"
	"github.com/yourusername/betmind/internal/simulation"
)

var simulateOpts struct {
	ratings  models.RatingVector
	category string
	trials   int
	seed     int64
	format   string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate the outcome distribution for a rating vector",
	Example: `  betmind simulate --attack-a 75 --defense-a 60 --attack-b 55 --defense-b 50
  betmind simulate --category basketball --tempo 70 --trials 50000 --format yaml`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.Float64Var(&simulateOpts.ratings.AttackA, "attack-a", models.NeutralRating, "attack rating of participant A (0-100)")
	f.Float64Var(&simulateOpts.ratings.DefenseA, "defense-a", models.NeutralRating, "defense rating of participant A (0-100)")
	f.Float64Var(&simulateOpts.ratings.AttackB, "attack-b", models.NeutralRating, "attack rating of participant B (0-100)")
	f.Float64Var(&simulateOpts.ratings.DefenseB, "defense-b", models.NeutralRating, "defense rating of participant B (0-100)")
	f.Float64Var(&simulateOpts.ratings.Tempo, "tempo", 0, "expected tempo, used by basketball (0 means neutral)")
	f.StringVar(&simulateOpts.category, "category", string(models.CategoryFootball), "football, basketball or other")
	f.IntVar(&simulateOpts.trials, "trials", 0, "number of trials (default from config)")
	f.Int64Var(&simulateOpts.seed, "seed", 0, "seed for a reproducible run (default from config)")
	f.StringVarP(&simulateOpts.format, "format", "o", formatJSON, "output format: json or yaml")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	simCfg := simulationConfig(cfg.Simulation)
	if simulateOpts.seed != 0 {
		simCfg.Seed = simulateOpts.seed
	}
	if simulateOpts.trials < 0 {
		return fmt.Errorf("trials must not be negative")
	}

	sim := simulation.NewSimulator(simCfg)
	out, err := sim.SimulateContext(ctx, simulateOpts.ratings, models.ParseCategory(simulateOpts.category), simulateOpts.trials)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), simulateOpts.format, out)
}
