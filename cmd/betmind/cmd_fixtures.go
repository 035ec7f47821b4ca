package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/betmind/internal/models"
)

var fixturesOpts struct {
	category string
	refresh  bool
	format   string
}

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "List today's open fixtures",
	RunE:  runFixtures,
}

func init() {
	f := fixturesCmd.Flags()
	f.StringVar(&fixturesOpts.category, "category", models.CategoryAll, "all, football, basketball or other")
	f.BoolVar(&fixturesOpts.refresh, "refresh", false, "bypass both cache tiers")
	f.StringVarP(&fixturesOpts.format, "format", "o", "table", "output format: table, json or yaml")
}

func runFixtures(cmd *cobra.Command, _ []string) error {
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

	fixtures, err := a.fixtures.ListFixtures(ctx, fixturesOpts.category, fixturesOpts.refresh)
	if err != nil {
		return err
	}

	if fixturesOpts.format != "table" {
		return render(cmd.OutOrStdout(), fixturesOpts.format, fixtures)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tLEAGUE\tKICKOFF\tSTATE\tODDS\tTRENDING")
	for _, fx := range fixtures {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%.2f\t%t\n",
			fx.ID, fx.Category, fx.League, fx.ScheduledDate, fx.ScheduledTime,
			fx.LifecycleState, fx.QuickOdds, fx.Trending)
	}
	return tw.Flush()
}
