package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/betmind/internal/service"
)

var analyzeOpts struct {
	league  string
	sport   string
	date    string
	time    string
	refresh bool
	format  string
}

var analyzeCmd = &cobra.Command{
	Use:     "analyze <participant-a> <participant-b>",
	Short:   "Analyze one fixture",
	Example: `  betmind analyze "Lyon" "Nice" --league "Ligue 1" --date 2026-10-19 --time 20:45`,
	Args:    cobra.ExactArgs(2),
	RunE:    runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeOpts.league, "league", "", "league or competition name")
	f.StringVar(&analyzeOpts.sport, "sport", "", "sport name, used to derive the category")
	f.StringVar(&analyzeOpts.date, "date", "", "scheduled date (YYYY-MM-DD)")
	f.StringVar(&analyzeOpts.time, "time", "", "scheduled kickoff time (HH:MM)")
	f.BoolVar(&analyzeOpts.refresh, "refresh", false, "bypass both cache tiers")
	f.StringVarP(&analyzeOpts.format, "format", "o", formatJSON, "output format: json or yaml")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, newLogger(cfg, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer a.close()

	fixture := service.NewFixture(args[0], args[1], analyzeOpts.league, analyzeOpts.sport,
		analyzeOpts.date, analyzeOpts.time, 0, false)
	artifact, err := a.analysis.GetAnalysis(ctx, fixture, analyzeOpts.refresh)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), analyzeOpts.format, artifact)
}
