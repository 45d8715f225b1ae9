package agents

import (
	"context"
	"iter"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
)

// TextGenerator is the text-generation surface the orchestration uses.
// *ai.Client implements it.
type TextGenerator interface {
	ai.JSONGenerator
	Generate(ctx context.Context, system, prompt string) (string, error)
	Stream(ctx context.Context, system, prompt string) iter.Seq2[string, error]
}

// ToolChatter runs one model turn with tools attached. *ai.Client implements it.
type ToolChatter interface {
	Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error)
}
