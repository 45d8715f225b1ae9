package posts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

type scriptedJSON struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (s *scriptedJSON) GenerateJSON(_ context.Context, _, prompt string, _ map[string]interface{}) (string, error) {
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, prompt)
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	return s.replies[i], nil
}

func TestRelevanceFilter_Verdicts(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  bool
	}{
		{name: "relevant", reply: `{"is_relevant": true}`, want: true},
		{name: "not relevant", reply: `{"is_relevant": false}`, want: false},
		{name: "fenced", reply: "```json\n{\"is_relevant\": true}\n```", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &scriptedJSON{replies: []string{tt.reply}}
			f := NewRelevanceFilter(gen, time.Millisecond)

			got, err := f.IsRelevant(context.Background(), "Tariffs on China")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, gen.calls)
			assert.Contains(t, gen.prompts[0], `"Tariffs on China"`)
		})
	}
}

func TestRelevanceFilter_RetriesOnce(t *testing.T) {
	gen := &scriptedJSON{
		replies: []string{"", `{"is_relevant": true}`},
		errs:    []error{errors.ErrExternal, nil},
	}
	f := NewRelevanceFilter(gen, time.Millisecond)

	got, err := f.IsRelevant(context.Background(), "stocks")
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, 2, gen.calls)
}

func TestRelevanceFilter_GivesUpAfterRetry(t *testing.T) {
	gen := &scriptedJSON{
		replies: []string{`{}`, `not json`},
	}
	f := NewRelevanceFilter(gen, time.Millisecond)

	_, err := f.IsRelevant(context.Background(), "stocks")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	assert.Equal(t, 2, gen.calls)
}

func TestRelevanceFilter_ContextCancelledDuringWait(t *testing.T) {
	gen := &scriptedJSON{errs: []error{errors.ErrExternal}}
	f := NewRelevanceFilter(gen, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.IsRelevant(ctx, "stocks")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gen.calls)
}
