package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/services/posts"
	"github.com/Verdenroz/buff-ai/internal/workers"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

type fakeIngester struct {
	report *posts.IngestReport
	err    error
	calls  int
}

func (f *fakeIngester) Ingest(context.Context) (*posts.IngestReport, error) {
	f.calls++
	return f.report, f.err
}

func TestPostIngestWorker_Run(t *testing.T) {
	tests := []struct {
		name    string
		report  *posts.IngestReport
		err     error
		wantErr error
	}{
		{name: "success", report: &posts.IngestReport{Scraped: 5, Saved: 2}},
		{name: "nothing new", report: &posts.IngestReport{}},
		{name: "lock held elsewhere", err: posts.ErrAlreadyRunning},
		{name: "scrape failure", err: errors.Wrap(errors.ErrExternal, "browser"), wantErr: errors.ErrExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := &fakeIngester{report: tt.report, err: tt.err}
			w := NewPostIngestWorker(ing, time.Hour, true)

			err := w.Run(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, ing.calls)
		})
	}
}

func TestPostIngestWorker_RunOnceRecordsHealth(t *testing.T) {
	ing := &fakeIngester{err: errors.Wrap(errors.ErrExternal, "browser")}
	w := NewPostIngestWorker(ing, time.Hour, true)

	s := workers.NewScheduler()
	s.RegisterWorker(w)

	err := s.RunOnce(context.Background(), WorkerName)
	require.Error(t, err)

	h := s.Health()[WorkerName]
	assert.Equal(t, int64(1), h.RunCount)
	assert.Equal(t, int64(1), h.ErrorCount)
	assert.Contains(t, h.LastError, "browser")
}
