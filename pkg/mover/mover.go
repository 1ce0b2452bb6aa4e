// Package mover implements the Crash-Mover: a bounded hand-off queue and a
// pool of workers that drive Storage then Publish with bounded,
// exponential-backoff retry, per spec.md §4.6.
package mover

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mozilla-services/antenna/internal/logger"
	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/mozilla-services/antenna/pkg/publish"
	"github.com/mozilla-services/antenna/pkg/storage"
	"github.com/mozilla-services/antenna/pkg/throttler"
)

// State is a CrashReport's position in the mover state machine, per §4.6:
// QUEUED -> SAVING -> PUBLISHING -> DONE, with SAVING->SAVING and
// PUBLISHING->PUBLISHING self-transitions on retry, and terminal states
// DONE, DROPPED_SAVE, DROPPED_PUBLISH.
type State string

const (
	StateQueued         State = "QUEUED"
	StateSaving         State = "SAVING"
	StatePublishing     State = "PUBLISHING"
	StateDone           State = "DONE"
	StateDroppedSave    State = "DROPPED_SAVE"
	StateDroppedPublish State = "DROPPED_PUBLISH"
)

// Config tunes the worker pool, queue capacity, and retry discipline.
type Config struct {
	// Workers is the number of concurrent worker goroutines (default 8).
	Workers int
	// QueueCapacity bounds the hand-off queue (default 4x Workers).
	QueueCapacity int
	// MaxRetries is the number of retries after the first attempt for a
	// transient error, per step (default 5).
	MaxRetries int
	// InitialBackoff is the first retry delay (default 100ms), doubling
	// on each subsequent attempt with ±10% jitter, per §4.6.
	InitialBackoff time.Duration
	// PublishDeadline bounds each Publish call (default 5s, §4.5).
	PublishDeadline time.Duration
	// EnqueueTimeout bounds how long Enqueue blocks when the queue is
	// full (default 0, i.e. wait indefinitely).
	EnqueueTimeout time.Duration
}

// DefaultConfig returns the collector's documented defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         8,
		QueueCapacity:   32,
		MaxRetries:      5,
		InitialBackoff:  100 * time.Millisecond,
		PublishDeadline: publish.DefaultDeadline,
		EnqueueTimeout:  0,
	}
}

// Metrics is the set of observations the mover reports. All methods must be
// safe to call on a nil receiver (pkg/metrics's nil-safe convention) so the
// mover can run with metrics disabled.
type Metrics interface {
	SaveCrashDropped()
	PublishCrashDropped()
	SaveDuration(d time.Duration)
	PublishDuration(d time.Duration)
	TotalDuration(d time.Duration)
	QueueDepth(n int)
}

// job pairs a report with its mutable mover state.
type job struct {
	report *crashreport.Report
	state  State
}

// Mover owns the hand-off queue and worker pool.
type Mover struct {
	cfg     Config
	store   storage.Adapter
	pub     publish.Adapter
	metrics Metrics

	queue chan *job
	wg    sync.WaitGroup

	// newBackOff is overridable in tests for deterministic retry timing.
	newBackOff func() backoff.BackOff
}

// New builds a Mover. Call Start to launch the worker pool and Enqueue to
// hand off crashes; call Shutdown to drain and stop.
func New(cfg Config, store storage.Adapter, pub publish.Adapter, metrics Metrics) *Mover {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 100 * time.Millisecond
	}
	if cfg.PublishDeadline <= 0 {
		cfg.PublishDeadline = publish.DefaultDeadline
	}

	m := &Mover{
		cfg:     cfg,
		store:   store,
		pub:     pub,
		metrics: metrics,
		queue:   make(chan *job, cfg.QueueCapacity),
	}
	m.newBackOff = func() backoff.BackOff {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = cfg.InitialBackoff
		eb.Multiplier = 2
		eb.RandomizationFactor = 0.1
		eb.MaxElapsedTime = 0
		return eb
	}
	return m
}

// Start launches the configured number of worker goroutines.
func (m *Mover) Start(ctx context.Context) {
	for i := 0; i < m.cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx, i)
	}
}

// Enqueue hands off a parsed, throttled, and ID-assigned report to the
// worker pool. It blocks while the queue is full — the sole backpressure
// channel per §4.6 — unless cfg.EnqueueTimeout is non-zero, in which case
// it returns false on timeout so the caller can respond 503.
func (m *Mover) Enqueue(ctx context.Context, report *crashreport.Report) bool {
	j := &job{report: report, state: StateQueued}
	if m.metrics != nil {
		m.metrics.QueueDepth(len(m.queue))
	}

	if m.cfg.EnqueueTimeout <= 0 {
		select {
		case m.queue <- j:
			return true
		case <-ctx.Done():
			return false
		}
	}

	timer := time.NewTimer(m.cfg.EnqueueTimeout)
	defer timer.Stop()
	select {
	case m.queue <- j:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Shutdown closes the queue and waits for in-flight and already-queued
// work to drain, per §4's graceful-shutdown requirement. ctx bounds the
// wait; if it is cancelled first, Shutdown returns its error while workers
// continue draining in the background.
func (m *Mover) Shutdown(ctx context.Context) error {
	close(m.queue)
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mover) worker(ctx context.Context, id int) {
	defer m.wg.Done()
	for j := range m.queue {
		m.process(ctx, id, j)
	}
}

func (m *Mover) process(ctx context.Context, workerID int, j *job) {
	start := time.Now()
	report := j.report

	if report.Verdict == string(throttler.FakeAccept) {
		return
	}

	j.state = StateSaving
	saveStart := time.Now()
	if !m.retrySave(ctx, workerID, j) {
		if m.metrics != nil {
			m.metrics.SaveCrashDropped()
		}
		j.state = StateDroppedSave
		return
	}
	if m.metrics != nil {
		m.metrics.SaveDuration(time.Since(saveStart))
	}

	if report.Verdict == string(throttler.Accept) {
		j.state = StatePublishing
		pubStart := time.Now()
		if !m.retryPublish(ctx, workerID, j) {
			if m.metrics != nil {
				m.metrics.PublishCrashDropped()
			}
			j.state = StateDroppedPublish
			if m.metrics != nil {
				m.metrics.TotalDuration(time.Since(start))
			}
			return
		}
		if m.metrics != nil {
			m.metrics.PublishDuration(time.Since(pubStart))
		}
	}

	j.state = StateDone
	if m.metrics != nil {
		m.metrics.TotalDuration(time.Since(start))
	}
}

// retrySave drives Storage.Save with bounded exponential-backoff retry on
// transient errors; returns false if the report was permanently dropped.
func (m *Mover) retrySave(ctx context.Context, workerID int, j *job) bool {
	bo := backoff.WithMaxRetries(m.newBackOff(), uint64(m.cfg.MaxRetries))
	attempt := 0
	for {
		attempt++
		outcome := m.store.Save(ctx, j.report)
		switch outcome {
		case storage.OK:
			return true
		case storage.PermanentError:
			m.logAttempt(workerID, "save", attempt, logger.State("dropped_permanent"))
			return false
		case storage.TransientError:
			next := bo.NextBackOff()
			if next == backoff.Stop {
				m.logAttempt(workerID, "save", attempt, logger.State("dropped_retries_exhausted"))
				return false
			}
			j.report.AddNote("save_retry")
			m.logAttempt(workerID, "save", attempt, logger.State("retrying"))
			if !sleepOrDone(ctx, next) {
				return false
			}
		}
	}
}

// retryPublish drives Publish.Publish with the same retry discipline as
// retrySave, additionally bounding each attempt by cfg.PublishDeadline.
func (m *Mover) retryPublish(ctx context.Context, workerID int, j *job) bool {
	bo := backoff.WithMaxRetries(m.newBackOff(), uint64(m.cfg.MaxRetries))
	attempt := 0
	for {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, m.cfg.PublishDeadline)
		outcome := m.pub.Publish(callCtx, j.report.ID)
		cancel()

		switch outcome {
		case publish.OK:
			return true
		case publish.PermanentError:
			m.logAttempt(workerID, "publish", attempt, logger.State("dropped_permanent"))
			return false
		case publish.TransientError:
			next := bo.NextBackOff()
			if next == backoff.Stop {
				m.logAttempt(workerID, "publish", attempt, logger.State("dropped_retries_exhausted"))
				return false
			}
			j.report.AddNote("publish_retry")
			m.logAttempt(workerID, "publish", attempt, logger.State("retrying"))
			if !sleepOrDone(ctx, next) {
				return false
			}
		}
	}
}

func (m *Mover) logAttempt(workerID int, phase string, attempt int, state slog.Attr) {
	logger.Warn("crash mover "+phase+" attempt",
		logger.WorkerID(workerID),
		logger.Attempt(attempt),
		logger.MaxAttempts(m.cfg.MaxRetries+1),
		state,
	)
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
