package agents

import (
	"context"
	"encoding/json"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
)

type call struct {
	system string
	prompt string
}

// fakeLLM is a deterministic text generator. route decides the routing
// JSON from the system prompt it was given.
type fakeLLM struct {
	mu sync.Mutex

	route    func(system string) string
	routeErr error

	answer string
	genErr error

	chunks    []string
	streamErr error

	jsonCalls   []call
	genCalls    []call
	streamCalls []call
	released    atomic.Bool
}

func (f *fakeLLM) GenerateJSON(_ context.Context, system, prompt string, _ map[string]interface{}) (string, error) {
	f.mu.Lock()
	f.jsonCalls = append(f.jsonCalls, call{system, prompt})
	f.mu.Unlock()

	if f.routeErr != nil {
		return "", f.routeErr
	}
	return f.route(system), nil
}

func (f *fakeLLM) Generate(_ context.Context, system, prompt string) (string, error) {
	f.mu.Lock()
	f.genCalls = append(f.genCalls, call{system, prompt})
	f.mu.Unlock()

	if f.genErr != nil {
		return "", f.genErr
	}
	if f.answer != "" {
		return f.answer, nil
	}
	return strings.Join(f.chunks, ""), nil
}

func (f *fakeLLM) Stream(_ context.Context, system, prompt string) iter.Seq2[string, error] {
	f.mu.Lock()
	f.streamCalls = append(f.streamCalls, call{system, prompt})
	f.mu.Unlock()

	return func(yield func(string, error) bool) {
		defer f.released.Store(true)
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if f.streamErr != nil {
			yield("", f.streamErr)
		}
	}
}

func (f *fakeLLM) lastSynthesisPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.genCalls) - 1; i >= 0; i-- {
		if f.genCalls[i].system == synthesisInstruction {
			return f.genCalls[i].prompt
		}
	}
	for i := len(f.streamCalls) - 1; i >= 0; i-- {
		if f.streamCalls[i].system == synthesisInstruction {
			return f.streamCalls[i].prompt
		}
	}
	return ""
}

func routeTo(agents []string, ticker, question string) func(string) string {
	return func(string) string {
		var t, q interface{}
		if ticker != "" {
			t = ticker
		}
		if question != "" {
			q = question
		}
		out, _ := json.Marshal(map[string]interface{}{"agents": agents, "ticker": t, "question": q})
		return string(out)
	}
}

// fakeSpecialist implements every specialist interface
type fakeSpecialist struct {
	output string
	err    error
	delay  time.Duration

	calls    atomic.Int32
	ticker   atomic.Value
	question atomic.Value
}

func (s *fakeSpecialist) run(ctx context.Context, ticker, question string) (string, error) {
	s.calls.Add(1)
	s.ticker.Store(ticker)
	s.question.Store(question)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.output, s.err
}

func (s *fakeSpecialist) Analyze(ctx context.Context, ticker, question string) (string, error) {
	return s.run(ctx, ticker, question)
}

func (s *fakeSpecialist) Invoke(ctx context.Context, ticker string) (string, error) {
	return s.run(ctx, ticker, "")
}

func (s *fakeSpecialist) Recommend(ctx context.Context) (string, error) {
	return s.run(ctx, "", "")
}

type specialistSet struct {
	fundamentals, sentiment, trading, search *fakeSpecialist
}

func newSpecialistSet() *specialistSet {
	return &specialistSet{
		fundamentals: &fakeSpecialist{output: "fundamentals says hi"},
		sentiment:    &fakeSpecialist{output: "sentiment says hi"},
		trading:      &fakeSpecialist{output: "trading says hi"},
		search:       &fakeSpecialist{output: "search says hi"},
	}
}

func (s *specialistSet) specialists() Specialists {
	return Specialists{
		Fundamentals: s.fundamentals,
		Sentiment:    s.sentiment,
		Trading:      s.trading,
		Search:       s.search,
	}
}

func (s *specialistSet) totalCalls() int32 {
	return s.fundamentals.calls.Load() + s.sentiment.calls.Load() + s.trading.calls.Load() + s.search.calls.Load()
}

// scriptedChatter replays tool-calling turns
type scriptedChatter struct {
	mu        sync.Mutex
	responses []*ai.ChatResponse
	err       error
	requests  []ai.ChatRequest
}

func (c *scriptedChatter) Chat(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	if len(c.responses) == 0 {
		return &ai.ChatResponse{Message: ai.Message{Role: ai.RoleAssistant}}, nil
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func textTurn(text string) *ai.ChatResponse {
	return &ai.ChatResponse{
		Message:      ai.Message{Role: ai.RoleAssistant, Content: text},
		FinishReason: ai.FinishReasonStop,
	}
}

func toolTurn(calls ...ai.ToolCall) *ai.ChatResponse {
	return &ai.ChatResponse{
		Message:      ai.Message{Role: ai.RoleAssistant, ToolCalls: calls},
		FinishReason: ai.FinishReasonToolCalls,
	}
}
