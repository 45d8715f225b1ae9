package workers

import (
	"context"
	"sync"
	"time"

	"github.com/Verdenroz/buff-ai/internal/metrics"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// DefaultStopTimeout is how long Stop waits for running iterations
const DefaultStopTimeout = 2 * time.Minute

// Scheduler runs registered workers on their intervals
type Scheduler struct {
	workers     []Worker
	stopTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
	log     *logger.Logger
}

// NewScheduler creates a new worker scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		stopTimeout: DefaultStopTimeout,
		log:         logger.Get().With("component", "scheduler"),
	}
}

// SetStopTimeout overrides DefaultStopTimeout
func (s *Scheduler) SetStopTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimeout = d
}

// RegisterWorker adds a worker. Workers registered after Start are ignored.
func (s *Scheduler) RegisterWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warnw("cannot register worker after scheduler has started", "worker", w.Name())
		return
	}

	s.workers = append(s.workers, w)
	s.log.Infow("worker registered", "worker", w.Name(), "interval", w.Interval())
}

// Start launches every enabled worker in its own goroutine
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.Wrap(errors.ErrInternal, "scheduler already started")
	}

	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	running := 0
	for _, w := range s.workers {
		if !w.Enabled() {
			s.log.Infow("skipping disabled worker", "worker", w.Name())
			continue
		}
		if w.Interval() <= 0 {
			s.log.Warnw("skipping worker without interval", "worker", w.Name())
			continue
		}

		running++
		s.wg.Add(1)
		go s.loop(w)
	}

	s.log.Infof("scheduler started with %d of %d workers", running, len(s.workers))
	return nil
}

// Stop cancels all workers and waits for running iterations to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrap(errors.ErrInternal, "scheduler not started")
	}
	s.cancel()
	timeout := s.stopTimeout
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		s.log.Info("all workers stopped")
	case <-time.After(timeout):
		err = errors.Wrapf(errors.ErrTimeout, "workers still running after %s", timeout)
		s.log.Warn(err.Error())
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	return err
}

// RunOnce executes a registered worker immediately, outside its schedule
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	s.mu.RLock()
	var target Worker
	for _, w := range s.workers {
		if w.Name() == name {
			target = w
			break
		}
	}
	s.mu.RUnlock()

	if target == nil {
		return errors.Wrapf(errors.ErrNotFound, "worker %s", name)
	}
	return s.execute(ctx, target)
}

func (s *Scheduler) loop(w Worker) {
	defer s.wg.Done()

	ticker := time.NewTicker(w.Interval())
	defer ticker.Stop()

	_ = s.execute(s.ctx, w)

	for {
		select {
		case <-s.ctx.Done():
			s.log.Debugw("worker stopping", "worker", w.Name())
			return
		case <-ticker.C:
			_ = s.execute(s.ctx, w)
		}
	}
}

// execute runs one iteration, converting panics into errors
func (s *Scheduler) execute(ctx context.Context, w Worker) (err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrInternal, "worker %s panicked: %v", w.Name(), r)
		}

		duration := time.Since(start)
		metrics.RecordWorkerExecution(w.Name(), duration, err)
		if hr, ok := w.(HealthReporter); ok {
			hr.RecordRun(duration, err)
		}

		if err != nil {
			s.log.Errorw("worker execution failed", "worker", w.Name(), "error", err, "duration", duration)
		} else {
			s.log.Debugw("worker execution completed", "worker", w.Name(), "duration", duration)
		}
	}()

	return w.Run(ctx)
}

// Health returns the run history of every worker that reports one
func (s *Scheduler) Health() map[string]Health {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Health, len(s.workers))
	for _, w := range s.workers {
		if hr, ok := w.(HealthReporter); ok {
			out[w.Name()] = hr.Health()
		}
	}
	return out
}

// Workers returns the registered workers
func (s *Scheduler) Workers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Worker, len(s.workers))
	copy(out, s.workers)
	return out
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

