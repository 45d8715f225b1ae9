package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// Structured is an output type the model fills in. Implementations must be
// usable through their zero value: Schema is called on it before generation.
type Structured interface {
	Schema() map[string]interface{}
	Validate() error
}

// JSONGenerator produces one JSON object for a prompt. *Client implements it.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, system, prompt string, schema map[string]interface{}) (string, error)
}

// GenerateStructured runs a JSON-mode generation and decodes the result into T.
// Output that does not decode or does not validate yields *errors.ValidationError.
func GenerateStructured[T Structured](ctx context.Context, gen JSONGenerator, system, prompt string) (T, error) {
	var out T

	raw, err := gen.GenerateJSON(ctx, system, prompt, out.Schema())
	if err != nil {
		return out, err
	}

	if err := DecodeStructured(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeStructured parses model output into dest and validates it
func DecodeStructured[T Structured](raw string, dest *T) error {
	cleaned := stripCodeFence(raw)

	if err := json.Unmarshal([]byte(cleaned), dest); err != nil {
		return &errors.ValidationError{
			Field:   "$",
			Message: "model output is not a valid JSON object: " + err.Error(),
			Value:   truncate(cleaned, 200),
		}
	}

	return (*dest).Validate()
}

// stripCodeFence removes a ```json fence some models add even in JSON mode
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
