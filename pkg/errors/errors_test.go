package errors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, Wrapf(nil, "ignored %d", 1))

	err := Wrapf(ErrNotFound, "post %d", 42)
	require.Error(t, err)
	assert.True(t, Is(err, ErrNotFound))
	assert.Equal(t, "post 42: resource not found", err.Error())
}

func TestValidationError_MatchesInvalidInput(t *testing.T) {
	err := Wrap(NewValidationError("agents", "unknown agent key", "crypto"), "decode routing decision")

	assert.True(t, Is(err, ErrInvalidInput))

	var vErr *ValidationError
	require.True(t, As(err, &vErr))
	assert.Equal(t, "agents", vErr.Field)
	assert.Equal(t, "crypto", vErr.Value)
}

func TestMultiError(t *testing.T) {
	var m MultiError
	assert.NoError(t, m.ToError())

	m.Add(nil)
	m.Add(ErrTimeout)
	m.Add(ErrUnavailable)

	err := m.ToError()
	require.Error(t, err)
	assert.True(t, Is(err, ErrTimeout))
	assert.True(t, Is(err, ErrUnavailable))
	assert.Contains(t, err.Error(), "multiple errors (2)")
}

func TestRequestID(t *testing.T) {
	_, ok := RequestID(context.Background())
	assert.False(t, ok)

	id, ok := RequestID(WithRequestID(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}

func TestMark(t *testing.T) {
	cause := NewValidationError("agents[0]", "unknown agent", "weather")
	err := Mark(cause, ErrRoutingFailed)

	assert.ErrorIs(t, err, ErrRoutingFailed)
	assert.ErrorIs(t, err, ErrInvalidInput)

	var ve *ValidationError
	assert.True(t, As(err, &ve))
	assert.Equal(t, "agents[0]", ve.Field)

	assert.Nil(t, Mark(nil, ErrRoutingFailed))
}
