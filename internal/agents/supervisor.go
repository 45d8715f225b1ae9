package agents

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/Verdenroz/buff-ai/internal/metrics"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// Supervisor routes a chat turn to specialists, runs them in parallel and
// merges their outputs. With no specialist selected it answers directly.
type Supervisor struct {
	llm    TextGenerator
	router *Router
	fanOut *FanOut
	synth  *Synthesizer
	log    *logger.Logger
}

// NewSupervisor wires router, fan-out and synthesizer on one shared client
func NewSupervisor(llm TextGenerator, specialists Specialists) *Supervisor {
	return &Supervisor{
		llm:    llm,
		router: NewRouter(llm),
		fanOut: NewFanOut(specialists),
		synth:  NewSynthesizer(llm),
		log:    logger.Get().With("component", "supervisor"),
	}
}

// plan is the outcome of routing and fan-out for one request
type plan struct {
	direct     bool
	transcript string
	results    []AgentResult
}

func (s *Supervisor) prepare(ctx context.Context, req ChatRequest) (*plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	decision, err := s.router.Route(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(decision.Agents) == 0 {
		metrics.RouteFallbacks.Inc()
		return &plan{direct: true, transcript: req.Transcript()}, nil
	}

	question := decision.Question
	if question == "" {
		question = req.Message
	}

	return &plan{results: s.fanOut.Run(ctx, decision.Agents, decision.Ticker, question)}, nil
}

// Handle answers a request with one fully materialized response.
func (s *Supervisor) Handle(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	requestID := uuid.NewString()
	log := s.log.With("request_id", requestID)

	p, err := s.prepare(ctx, req)
	if err != nil {
		log.Warnf("Request failed before synthesis: %v", err)
		return nil, err
	}

	if p.direct {
		log.Infof("No agent selected, answering directly")
		answer, err := s.llm.Generate(ctx, DirectChatInstruction(req.Ticker), p.transcript)
		if err != nil {
			return nil, err
		}
		return &ChatResponse{Response: answer}, nil
	}

	answer, err := s.synth.Synthesize(ctx, req.Message, p.results)
	if err != nil {
		log.Errorf("Synthesis failed: %v", err)
		return nil, err
	}
	return &ChatResponse{Response: answer}, nil
}

// HandleStream routes and fans out before returning, so those failures
// surface as the error result. The returned sequence then yields the answer
// as it is generated and ends with the generation stream.
func (s *Supervisor) HandleStream(ctx context.Context, req ChatRequest) (iter.Seq2[string, error], error) {
	requestID := uuid.NewString()
	log := s.log.With("request_id", requestID)

	p, err := s.prepare(ctx, req)
	if err != nil {
		log.Warnf("Request failed before streaming: %v", err)
		return nil, err
	}

	if p.direct {
		log.Infof("No agent selected, streaming direct answer")
		return s.llm.Stream(ctx, DirectChatInstruction(req.Ticker), p.transcript), nil
	}

	return s.synth.Stream(ctx, req.Message, p.results), nil
}
