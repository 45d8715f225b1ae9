package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/adapters/errors/noop"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

func TestInit_FallsBackToInfoOnBadLevel(t *testing.T) {
	require.NoError(t, Init("not-a-level", "development"))
	assert.True(t, Get().Desugar().Core().Enabled(0)) // info
	assert.False(t, Get().Desugar().Core().Enabled(-1))
}

func TestErrorsAreForwardedToTracker(t *testing.T) {
	require.NoError(t, Init("debug", "development"))
	tracker := noop.New()
	SetErrorTracker(tracker)
	defer SetErrorTracker(nil)

	log := Get().With("component", "test")
	log.Errorf("boom %d", 1)
	log.Error("boom", 2)
	log.ErrorWithContext(errors.WithRequestID(context.Background(), "req-1"), errors.ErrInternal, nil)

	assert.Equal(t, int64(3), tracker.Captured())
}
