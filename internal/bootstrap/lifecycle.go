package bootstrap

import (
	"context"
	"sync"
	"time"

	redisclient "github.com/Verdenroz/buff-ai/internal/adapters/redis"
	"github.com/Verdenroz/buff-ai/internal/api"
	"github.com/Verdenroz/buff-ai/internal/workers"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 150 * time.Second,
	}
}

// Shutdown stops components in order: no new requests, workers finish,
// telemetry flushes, and Redis closes last since the others may still use it.
// Any argument may be nil. Every step runs even when an earlier one failed;
// the failures are returned together.
func (l *Lifecycle) Shutdown(
	wg *sync.WaitGroup,
	httpServer *api.Server,
	workerScheduler *workers.Scheduler,
	redisClient *redisclient.Client,
	errorTracker errors.Tracker,
	log *logger.Logger,
) error {
	var errs errors.MultiError

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	// Step 1: stop accepting requests; open chat streams get 10s to finish
	log.Info("[1/5] Stopping HTTP server...")
	if httpServer != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		if err := httpServer.Shutdown(httpCtx); err != nil {
			log.Errorf("HTTP server shutdown failed: %v", err)
			errs.Add(errors.Wrap(err, "http server"))
		}
		httpCancel()
	}

	// Step 2: background workers
	log.Info("[2/5] Stopping background workers...")
	if workerScheduler != nil && workerScheduler.IsRunning() {
		if err := workerScheduler.Stop(); err != nil {
			log.Errorf("Workers shutdown failed: %v", err)
			errs.Add(errors.Wrap(err, "workers"))
		} else {
			log.Info("Workers stopped")
		}
	}

	log.Info("[3/5] Waiting for goroutines...")
	errs.Add(l.waitForGoroutines(wg, 5*time.Second, log))

	log.Info("[4/5] Flushing error tracker and logs...")
	errs.Add(l.flushErrorTracker(shutdownCtx, errorTracker, log))
	_ = logger.Sync()

	// Step 5: LAST, other components may need Redis during shutdown
	log.Info("[5/5] Closing Redis...")
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Errorf("Redis close failed: %v", err)
			errs.Add(errors.Wrap(err, "redis"))
		}
	}

	log.Info("Graceful shutdown complete")
	return errs.ToError()
}

func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) error {
	if wg == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		log.Warnf("Some goroutines did not finish within %s", timeout)
		return errors.Wrapf(errors.ErrTimeout, "goroutines still running after %s", timeout)
	}
}

func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) error {
	if tracker == nil {
		return nil
	}

	flushCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Warnf("Error tracker flush failed: %v", err)
		return errors.Wrap(err, "error tracker flush")
	}
	return nil
}
