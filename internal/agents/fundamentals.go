package agents

import (
	"context"

	"github.com/Verdenroz/buff-ai/internal/tools"
)

// Fundamentals answers questions about one ticker from quotes, technicals
// and web search.
type Fundamentals struct {
	runner *ToolRunner
}

// NewFundamentals creates the fundamentals specialist
func NewFundamentals(llm ToolChatter, registry *tools.Registry, maxTurns int) (*Fundamentals, error) {
	subset, err := registry.Subset(tools.GetQuotes, tools.GetTechnicals, tools.GetSearch)
	if err != nil {
		return nil, err
	}
	return &Fundamentals{runner: NewToolRunner(llm, subset, maxTurns)}, nil
}

// Analyze answers question about ticker
func (a *Fundamentals) Analyze(ctx context.Context, ticker, question string) (string, error) {
	return a.runner.Run(ctx, fundamentalsInstruction, fundamentalsPrompt(ticker, question))
}
