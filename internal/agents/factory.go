package agents

import (
	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/tools"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// LLM is everything the specialists and the supervisor need from the
// text-generation client. *ai.Client implements it.
type LLM interface {
	TextGenerator
	ToolChatter
}

var _ LLM = (*ai.Client)(nil)

// FactoryDeps gathers external dependencies needed to instantiate agents.
type FactoryDeps struct {
	LLM          LLM
	ToolRegistry *tools.Registry
	News         NewsSource
	Web          tools.WebSearch
	MaxToolTurns int
}

// Agents is the constructed set: the supervisor plus the sentiment
// specialist, which the API also calls directly.
type Agents struct {
	Supervisor *Supervisor
	Sentiment  *Sentiment
}

// NewAgents builds every specialist and the supervisor on one shared client.
func NewAgents(deps FactoryDeps) (*Agents, error) {
	if deps.LLM == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "LLM client is required")
	}
	if deps.ToolRegistry == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "tool registry is required")
	}
	if deps.News == nil || deps.Web == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "news and web search are required")
	}

	fundamentals, err := NewFundamentals(deps.LLM, deps.ToolRegistry, deps.MaxToolTurns)
	if err != nil {
		return nil, errors.Wrap(err, "fundamentals agent")
	}
	trading, err := NewTrading(deps.LLM, deps.ToolRegistry, deps.MaxToolTurns)
	if err != nil {
		return nil, errors.Wrap(err, "trading agent")
	}
	search, err := NewSearch(deps.LLM, deps.Web, deps.ToolRegistry, deps.MaxToolTurns)
	if err != nil {
		return nil, errors.Wrap(err, "search agent")
	}
	sentiment := NewSentiment(deps.LLM, deps.News)

	return &Agents{
		Supervisor: NewSupervisor(deps.LLM, Specialists{
			Fundamentals: fundamentals,
			Sentiment:    sentiment,
			Trading:      trading,
			Search:       search,
		}),
		Sentiment: sentiment,
	}, nil
}
