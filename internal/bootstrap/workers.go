package bootstrap

import (
	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/internal/workers"
	"github.com/Verdenroz/buff-ai/internal/workers/ingest"
)

// provideWorkers registers every background worker on a new scheduler
func provideWorkers(cfg config.WorkerConfig, ingester ingest.Ingester) *workers.Scheduler {
	scheduler := workers.NewScheduler()

	scheduler.RegisterWorker(ingest.NewPostIngestWorker(
		ingester,
		cfg.PostIngestInterval,
		cfg.PostIngestEnabled,
	))

	return scheduler
}
