package agents

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/tools"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// DefaultMaxToolTurns bounds the model turns of one tool-calling run
const DefaultMaxToolTurns = 6

// ToolRunner drives a tool-calling conversation until the model answers in text
type ToolRunner struct {
	llm      ToolChatter
	tools    *tools.Registry
	maxTurns int
	log      *logger.Logger
}

// NewToolRunner creates a runner limited to the tools in registry
func NewToolRunner(llm ToolChatter, registry *tools.Registry, maxTurns int) *ToolRunner {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxToolTurns
	}
	return &ToolRunner{
		llm:      llm,
		tools:    registry,
		maxTurns: maxTurns,
		log:      logger.Get().With("component", "tool_runner"),
	}
}

// Run sends the prompt and executes requested tool calls, feeding their
// results back, for at most maxTurns model turns. When the budget runs out
// the last text the model produced is returned.
func (r *ToolRunner) Run(ctx context.Context, system, prompt string) (string, error) {
	messages := []ai.Message{ai.SystemMessage(system), ai.UserMessage(prompt)}
	defs := r.tools.Definitions()

	lastText := ""
	toolCalls := 0
	start := time.Now()

	for turn := 0; turn < r.maxTurns; turn++ {
		resp, err := r.llm.Chat(ctx, ai.ChatRequest{Messages: messages, Tools: defs})
		if err != nil {
			return "", err
		}

		if text := strings.TrimSpace(resp.Message.Content); text != "" {
			lastText = text
		}

		if len(resp.Message.ToolCalls) == 0 {
			r.log.Debugf("Tool run complete: turns=%d tool_calls=%d duration=%v", turn+1, toolCalls, time.Since(start))
			if lastText == "" {
				return "", errors.Wrap(errors.ErrExternal, "model returned an empty answer")
			}
			return lastText, nil
		}

		messages = append(messages, resp.Message)
		for _, call := range resp.Message.ToolCalls {
			toolCalls++
			messages = append(messages, ai.ToolResultMessage(call, r.execute(ctx, call)))
		}
	}

	r.log.Warnf("Tool run hit the turn limit: turns=%d tool_calls=%d", r.maxTurns, toolCalls)
	if lastText != "" {
		return lastText, nil
	}
	return "", errors.Wrapf(errors.ErrToolLoopExhausted, "no answer after %d turns", r.maxTurns)
}

// execute runs one tool call. Every failure becomes an error payload for
// the model instead of ending the run.
func (r *ToolRunner) execute(ctx context.Context, call ai.ToolCall) string {
	t, ok := r.tools.Get(call.Name)
	if !ok {
		r.log.Warnf("Model requested unknown tool %s", call.Name)
		return errorPayload(errors.Wrapf(errors.ErrNotFound, "unknown tool %q", call.Name))
	}

	args := map[string]interface{}{}
	if strings.TrimSpace(call.Arguments) != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return errorPayload(errors.Wrapf(errors.ErrInvalidInput, "invalid arguments for %s: %v", call.Name, err))
		}
	}

	r.log.Debugf("Tool call: %s(%s)", call.Name, call.Arguments)

	result, err := t.Execute(ctx, args)
	if err != nil {
		r.log.Warnf("Tool %s failed: %v", call.Name, err)
		return errorPayload(err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return errorPayload(errors.Wrapf(err, "encode %s result", call.Name))
	}
	return string(encoded)
}

func errorPayload(err error) string {
	encoded, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(encoded)
}
