package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/betmind/internal/api"
	"github.com/yourusername/betmind/internal/health"
	"github.com/yourusername/betmind/internal/metrics"
	"github.com/yourusername/betmind/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Starts the HTTP API with health, readiness and metrics endpoints.
When refresh is enabled the fixture list is reloaded on the configured schedule.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg, nil)
	log.WithField("version", version).Info("BetMind starting")

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	hs := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     version,
		Commit:      commit,
		Logger:      log,
		Store:       a.gateway,
	})

	var sched *scheduler.Scheduler
	if cfg.Refresh.Enabled {
		sched = scheduler.NewScheduler(a.fixtures, a.gate.Location(), log)
		if err := sched.ScheduleFixtureRefresh(cfg.Refresh.Spec); err != nil {
			return fmt.Errorf("invalid refresh schedule: %w", err)
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
		go sched.RunNow()
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	srv := api.NewServer(api.Config{
		Address:         cfg.API.Address(),
		Mode:            cfg.API.Mode,
		ShutdownTimeout: cfg.API.ShutdownTimeout,
		MetricsPath:     metricsPath,
	}, a.analysis, a.fixtures, a.simulator, hs, log)

	hs.SetReady(true)
	err = srv.Start(ctx)
	hs.SetReady(false)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("api server failed: %w", err)
	}
	log.Info("BetMind stopped")
	return nil
}
