package agents

import (
	"context"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/metrics"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// Router classifies a conversation into specialists, a ticker and a question.
type Router struct {
	llm ai.JSONGenerator
	log *logger.Logger
}

// NewRouter creates a router on a structured-generation backend
func NewRouter(llm ai.JSONGenerator) *Router {
	return &Router{
		llm: llm,
		log: logger.Get().With("component", "router"),
	}
}

// Route makes one structured-generation call. Failures are not retried
// here and come back wrapped in ErrRoutingFailed.
func (r *Router) Route(ctx context.Context, req ChatRequest) (RoutingDecision, error) {
	decision, err := ai.GenerateStructured[RoutingDecision](ctx, r.llm, RouterInstruction(req.Ticker), req.Transcript())
	if err != nil {
		return RoutingDecision{}, errors.Mark(err, errors.ErrRoutingFailed)
	}
	decision = decision.Normalize()

	for _, k := range decision.Agents {
		metrics.RouteDecisions.WithLabelValues(k.String()).Inc()
	}
	r.log.Infof("Routing decision: agents=%v ticker=%q", decision.Agents, decision.Ticker)

	return decision, nil
}
