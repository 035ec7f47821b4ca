// Package scheduler runs the periodic fixture refresh.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmind/internal/metrics"
)

// Refresher reloads the day's fixtures.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Scheduler manages scheduled refresh jobs
type Scheduler struct {
	cron       *cron.Cron
	refresher  Refresher
	logger     *logrus.Logger
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	jobTimeout time.Duration
}

// NewScheduler creates a new scheduler. Jobs are evaluated in loc and an
// overrunning refresh is skipped rather than stacked.
func NewScheduler(refresher Refresher, loc *time.Location, logger *logrus.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		refresher:  refresher,
		logger:     logger,
		jobIDs:     make([]cron.EntryID, 0),
		jobTimeout: 90 * time.Second,
	}
}

// ScheduleFixtureRefresh adds the fixture refresh job, e.g. "@every 2m".
func (s *Scheduler) ScheduleFixtureRefresh(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(spec, s.runRefresh)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("spec", spec).Info("Scheduled fixture refresh")
	return nil
}

// RunNow performs one refresh synchronously.
func (s *Scheduler) RunNow() {
	s.runRefresh()
}

func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	start := time.Now()
	count, err := s.refresher.Refresh(ctx)
	metrics.RecordFixtureRefresh(err == nil)
	if err != nil {
		s.logger.WithError(err).Warn("Fixture refresh failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"fixtures": count,
		"duration": time.Since(start),
	}).Debug("Fixture refresh completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	next := time.Time{}
	for _, id := range s.jobIDs {
		entry := s.cron.Entry(id)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}
