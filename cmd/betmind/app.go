package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmind/internal/cache"
	"github.com/yourusername/betmind/internal/config"
	"github.com/yourusername/betmind/internal/inference"
	"github.com/yourusername/betmind/internal/logger"
	"github.com/yourusername/betmind/internal/models"
	"github.com/yourusername/betmind/internal/retry"
	"github.com/yourusername/betmind/internal/schedule"
	"github.com/yourusername/betmind/internal/service"
	"github.com/yourusername/betmind/internal/simulation"
	"github.com/yourusername/betmind/internal/store"
)

const cliTimeout = 5 * time.Minute

// app holds the wired services shared by every command.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	inference *inference.Client
	gateway   *store.Gateway
	writer    *store.Writer
	gate      *schedule.Gate
	simulator *simulation.Simulator
	analysis  *service.AnalysisService
	fixtures  *service.FixtureService
	caches    map[string]cacheStats
}

type cacheStats interface {
	Stats() (hits, misses uint64, ratio float64)
	ItemCount() int
}

// loadConfig reads the configuration, overlays secrets and validates it.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplySecrets(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) *logrus.Logger {
	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	if out != nil {
		log.SetOutput(out)
	}
	return log
}

// newApp wires the store, inference client and services. The writer is
// started; callers must call close.
func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	gate, err := schedule.NewGate(scheduleConfig(cfg.Schedule))
	if err != nil {
		return nil, err
	}

	backend, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	gateway := store.NewGateway(backend, nil, storePolicy(cfg), log)
	writer := store.NewWriter(gateway, cfg.Store.WriteQueueSize, cfg.Store.WriteWorkers, cfg.Store.WriteTimeout, log)
	writer.Start()

	client := inference.NewClient(&cfg.Inference, retryPolicy(cfg.Retry.Inference, retry.DefaultPolicy()), log)
	sim := simulation.NewSimulator(simulationConfig(cfg.Simulation))
	artifacts := cache.NewArtifactCache(cfg.Cache.TTL, cfg.Cache.MaxSize)
	days := cache.NewFixtureCache(cfg.Cache.TTL, cfg.Cache.MaxSize)

	a := &app{
		cfg:       cfg,
		log:       log,
		inference: client,
		gateway:   gateway,
		writer:    writer,
		gate:      gate,
		simulator: sim,
		analysis:  service.NewAnalysisService(client, artifacts, gateway, writer, sim, log),
		fixtures:  service.NewFixtureService(client, days, gateway, writer, gate, log),
		caches:    map[string]cacheStats{"analysis": artifacts, "fixtures": days},
	}

	log.WithFields(logrus.Fields{
		"store":     cfg.Store.Backend,
		"inference": cfg.Inference.BaseURL,
		"timezone":  gate.Location().String(),
	}).Info("Services initialized")
	return a, nil
}

// close flushes pending store writes and releases connections.
func (a *app) close() {
	for name, c := range a.caches {
		hits, misses, ratio := c.Stats()
		a.log.WithFields(logrus.Fields{
			"cache":     name,
			"entries":   c.ItemCount(),
			"hits":      hits,
			"misses":    misses,
			"hit_ratio": ratio,
		}).Debug("Cache statistics")
	}
	a.writer.Stop()
	if err := a.gateway.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close store")
	}
	if err := a.inference.Close(); err != nil {
		a.log.WithError(err).Debug("Failed to close inference client")
	}
}

// retryPolicy maps a configured policy, using fallback when no attempt count
// is set.
func retryPolicy(c config.RetryPolicyConfig, fallback retry.Policy) retry.Policy {
	if c.MaxAttempts == 0 {
		return fallback
	}
	return retry.Policy{
		MaxAttempts:    c.MaxAttempts,
		InitialDelay:   c.InitialDelay,
		MaxDelay:       c.MaxDelay,
		AttemptTimeout: c.AttemptTimeout,
		Jitter:         c.Jitter,
	}
}

func storePolicy(cfg *config.Config) retry.Policy {
	p := retryPolicy(cfg.Retry.Store, store.DefaultPolicy())
	if p.AttemptTimeout <= 0 {
		p.AttemptTimeout = cfg.Store.OperationTimeout
	}
	return p
}

func scheduleConfig(c config.ScheduleConfig) schedule.Config {
	return schedule.Config{
		Timezone:     c.Timezone,
		GraceWindow:  c.GraceWindow,
		ActiveWindow: c.ActiveWindow,
	}
}

func simulationConfig(c config.SimulationConfig) simulation.Config {
	profiles := make(map[models.Category]simulation.Profile, len(c.Profiles))
	for name, p := range c.Profiles {
		profiles[models.ParseCategory(name)] = simulation.Profile{
			Baseline:    p.Baseline,
			StdDev:      p.StdDev,
			PowerFactor: p.PowerFactor,
			BinWidth:    p.BinWidth,
			NoDraws:     p.NoDraws,
			UseTempo:    p.UseTempo,
		}
	}
	return simulation.Config{
		Trials:            c.Trials,
		Seed:              c.Seed,
		ParallelThreshold: c.ParallelThreshold,
		Workers:           c.Workers,
		Profiles:          profiles,
	}
}

// withTimeout bounds a one-shot command and cancels it on SIGINT or SIGTERM.
func withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	tctx, cancel := context.WithTimeout(ctx, cliTimeout)
	return tctx, func() {
		cancel()
		stop()
	}
}
