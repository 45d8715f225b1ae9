package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

type verdict struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (verdict) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"label": map[string]interface{}{"type": "string"},
			"score": map[string]interface{}{"type": "number"},
		},
		"required": []string{"label", "score"},
	}
}

func (v verdict) Validate() error {
	if v.Label == "" {
		return errors.NewValidationError("label", "is required", v.Label)
	}
	return nil
}

type stubJSON struct {
	out    string
	err    error
	schema map[string]interface{}
}

func (s *stubJSON) GenerateJSON(_ context.Context, _, _ string, schema map[string]interface{}) (string, error) {
	s.schema = schema
	return s.out, s.err
}

func TestGenerateStructured(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    verdict
		wantErr bool
	}{
		{name: "plain object", out: `{"label":"bullish","score":0.8}`, want: verdict{Label: "bullish", Score: 0.8}},
		{name: "fenced object", out: "```json\n{\"label\":\"bearish\",\"score\":-0.2}\n```", want: verdict{Label: "bearish", Score: -0.2}},
		{name: "not json", out: "I think it is bullish", wantErr: true},
		{name: "fails validation", out: `{"score":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubJSON{out: tt.out}

			got, err := GenerateStructured[verdict](context.Background(), gen, "sys", "prompt")
			assert.Equal(t, verdict{}.Schema(), gen.schema)

			if tt.wantErr {
				require.Error(t, err)
				var vErr *errors.ValidationError
				assert.True(t, errors.As(err, &vErr))
				assert.True(t, errors.Is(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateStructured_PropagatesGeneratorError(t *testing.T) {
	gen := &stubJSON{err: errors.Wrap(errors.ErrTimeout, "slow")}

	_, err := GenerateStructured[verdict](context.Background(), gen, "sys", "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTimeout))
}
