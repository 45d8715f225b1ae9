package noop

import (
	"context"
	"sync/atomic"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// Tracker drops every event. It still counts captured errors so that a
// disabled deployment (and tests) can tell whether anything was reported.
type Tracker struct {
	captured atomic.Int64
}

// New creates a no-op tracker
func New() *Tracker {
	return &Tracker{}
}

// CaptureError counts the error and drops it
func (t *Tracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	t.captured.Add(1)
	return nil
}

// CaptureMessage does nothing
func (t *Tracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	return nil
}

// AddBreadcrumb does nothing
func (t *Tracker) AddBreadcrumb(ctx context.Context, message string, category string, level errors.Level, data map[string]interface{}) {
}

// Flush does nothing
func (t *Tracker) Flush(ctx context.Context) error {
	return nil
}

// Captured returns how many errors were passed to CaptureError
func (t *Tracker) Captured() int64 {
	return t.captured.Load()
}
