package ingest

import (
	"context"
	"time"

	"github.com/Verdenroz/buff-ai/internal/services/posts"
	"github.com/Verdenroz/buff-ai/internal/workers"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// WorkerName identifies the ingestion worker in logs and metrics
const WorkerName = "post_ingest"

// Ingester runs one ingestion pass
type Ingester interface {
	Ingest(ctx context.Context) (*posts.IngestReport, error)
}

// PostIngestWorker periodically scrapes, filters and stores new posts
type PostIngestWorker struct {
	*workers.BaseWorker
	ingester Ingester
}

// NewPostIngestWorker creates the ingestion worker
func NewPostIngestWorker(ingester Ingester, interval time.Duration, enabled bool) *PostIngestWorker {
	return &PostIngestWorker{
		BaseWorker: workers.NewBaseWorker(WorkerName, interval, enabled),
		ingester:   ingester,
	}
}

// Run executes one ingestion. An overlapping run on another instance is not an error.
func (w *PostIngestWorker) Run(ctx context.Context) error {
	report, err := w.ingester.Ingest(ctx)
	if errors.Is(err, posts.ErrAlreadyRunning) {
		w.Log().Info("ingestion already running elsewhere, skipping")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "post ingestion")
	}

	if report.Saved > 0 {
		w.Log().Infof("stored %d new posts (%d scraped, %d skipped)", report.Saved, report.Scraped, report.Skipped)
	}
	return nil
}
