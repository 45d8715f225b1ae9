package agents

import (
	"context"

	"github.com/Verdenroz/buff-ai/internal/tools"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// Trading proposes a hold / buy-on-dips / sell strategy using market data,
// peers, news and recent posts by market-moving accounts.
type Trading struct {
	runner *ToolRunner
}

// NewTrading creates the trading-strategy specialist
func NewTrading(llm ToolChatter, registry *tools.Registry, maxTurns int) (*Trading, error) {
	subset, err := registry.Subset(
		tools.GetQuotes,
		tools.GetNews,
		tools.GetSimilar,
		tools.GetTechnicals,
		tools.GetPriceLevels,
		tools.GetRecentPosts,
	)
	if err != nil {
		return nil, err
	}
	return &Trading{runner: NewToolRunner(llm, subset, maxTurns)}, nil
}

// Invoke proposes a strategy for ticker
func (a *Trading) Invoke(ctx context.Context, ticker string) (string, error) {
	if ticker == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "a ticker is required for a trading strategy")
	}
	return a.runner.Run(ctx, tradingInstruction, tradingPrompt(ticker))
}
