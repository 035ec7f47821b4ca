package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmind/internal/logger"
	"github.com/yourusername/betmind/internal/metrics"
	"github.com/yourusername/betmind/internal/models"
)

const (
	kindAnalysis = "analysis"
	kindFixtures = "fixtures"
)

type writeJob struct {
	id   string
	kind string
	key  string
	run  func(ctx context.Context) error
}

// WriteError is a failed background write. It is only ever logged.
type WriteError struct {
	ID   string
	Kind string
	Key  string
	Err  error
}

func (e *WriteError) Error() string {
	return e.Kind + " write " + e.ID + " (" + e.Key + "): " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer performs gateway writes off the request path through a bounded
// queue. When the queue is full the write is dropped.
type Writer struct {
	gateway *Gateway
	queue   chan writeJob
	errs    chan *WriteError
	timeout time.Duration
	workers int
	log     *logger.StoreLogger

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
	logDone chan struct{}
}

// NewWriter creates a writer. Call Start before enqueueing.
func NewWriter(g *Gateway, queueSize, workers int, timeout time.Duration, log *logrus.Logger) *Writer {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	name := "none"
	if g.backend != nil {
		name = g.backend.Name()
	}
	return &Writer{
		gateway: g,
		queue:   make(chan writeJob, queueSize),
		errs:    make(chan *WriteError, queueSize),
		timeout: timeout,
		workers: workers,
		log:     logger.NewStoreLogger(log, name),
		logDone: make(chan struct{}),
	}
}

// Start launches the workers and the error logger.
func (w *Writer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.work()
	}
	go w.logErrors()
}

// Stop closes the queue, waits for queued writes to finish and stops the
// error logger. Later enqueues are dropped.
func (w *Writer) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	close(w.queue)
	w.mu.Unlock()

	if !started {
		return
	}
	w.wg.Wait()
	close(w.errs)
	<-w.logDone
}

// EnqueueAnalysis schedules an upsert of the artifact. It returns false when
// the write was dropped.
func (w *Writer) EnqueueAnalysis(artifact *models.AnalysisArtifact) bool {
	return w.enqueue(kindAnalysis, artifact.EntityID, func(ctx context.Context) error {
		return w.gateway.PutAnalysis(ctx, artifact)
	})
}

// EnqueueFixtures schedules an upsert of the day's fixtures.
func (w *Writer) EnqueueFixtures(day string, fixtures []models.FixtureRef) bool {
	return w.enqueue(kindFixtures, day, func(ctx context.Context) error {
		return w.gateway.PutFixtures(ctx, day, fixtures)
	})
}

// Pending returns the number of queued writes.
func (w *Writer) Pending() int {
	return len(w.queue)
}

func (w *Writer) enqueue(kind, key string, run func(context.Context) error) bool {
	if !w.gateway.Enabled() {
		return false
	}

	id := uuid.NewString()
	if w.gateway.IsOffline() {
		w.drop(id, kind, key, "offline")
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.drop(id, kind, key, "stopped")
		return false
	}

	select {
	case w.queue <- writeJob{id: id, kind: kind, key: key, run: run}:
		metrics.UpdateWriteQueueDepth(len(w.queue))
		return true
	default:
		w.drop(id, kind, key, "queue_full")
		return false
	}
}

func (w *Writer) drop(id, kind, key, reason string) {
	metrics.RecordWriteDropped(reason)
	w.log.LogWriteDropped(id, kind, key, reason)
}

func (w *Writer) work() {
	defer w.wg.Done()
	for job := range w.queue {
		metrics.UpdateWriteQueueDepth(len(w.queue))

		ctx := context.Background()
		cancel := context.CancelFunc(func() {})
		if w.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, w.timeout)
		}
		err := job.run(ctx)
		cancel()
		if err == nil {
			continue
		}

		werr := &WriteError{ID: job.id, Kind: job.kind, Key: job.key, Err: err}
		select {
		case w.errs <- werr:
		default:
			w.log.LogWriteFailed(job.id, job.kind, job.key, err)
		}
	}
}

func (w *Writer) logErrors() {
	defer close(w.logDone)
	for werr := range w.errs {
		w.log.LogWriteFailed(werr.ID, werr.Kind, werr.Key, werr.Err)
	}
}
