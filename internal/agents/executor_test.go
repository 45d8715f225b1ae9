package agents

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/tools"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

func echoRegistry() *tools.Registry {
	registry := tools.NewRegistry()
	registry.Register(tools.New("echo", "Echo a symbol", []ai.ToolParameter{{Name: "symbol", Required: true}},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			symbol, err := tools.RequiredStringArg(args, "symbol")
			if err != nil {
				return nil, err
			}
			return map[string]string{"symbol": symbol}, nil
		}))
	return registry
}

func TestToolRunner_ExecutesToolsUntilAnswer(t *testing.T) {
	chatter := &scriptedChatter{responses: []*ai.ChatResponse{
		toolTurn(
			ai.ToolCall{ID: "1", Name: "echo", Arguments: `{"symbol":"AAPL"}`},
			ai.ToolCall{ID: "2", Name: "missing", Arguments: `{}`},
			ai.ToolCall{ID: "3", Name: "echo", Arguments: `not json`},
			ai.ToolCall{ID: "4", Name: "echo", Arguments: ``},
		),
		textTurn("  AAPL looks fine  "),
	}}

	out, err := NewToolRunner(chatter, echoRegistry(), 4).Run(context.Background(), "sys", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "AAPL looks fine", out)

	require.Len(t, chatter.requests, 2)
	first := chatter.requests[0]
	require.Len(t, first.Tools, 1)
	assert.Equal(t, "echo", first.Tools[0].Name)
	assert.Equal(t, []ai.Message{ai.SystemMessage("sys"), ai.UserMessage("prompt")}, first.Messages)

	second := chatter.requests[1].Messages
	require.Len(t, second, 7) // system, user, assistant, four tool results
	assert.Equal(t, ai.RoleAssistant, second[2].Role)

	results := map[string]map[string]string{}
	for _, m := range second[3:] {
		assert.Equal(t, ai.RoleTool, m.Role)
		var payload map[string]string
		require.NoError(t, json.Unmarshal([]byte(m.Content), &payload))
		results[m.ToolCallID] = payload
	}
	assert.Equal(t, "AAPL", results["1"]["symbol"])
	assert.Contains(t, results["2"]["error"], "unknown tool")
	assert.Contains(t, results["3"]["error"], "invalid arguments")
	assert.Contains(t, results["4"]["error"], "required")
}

func TestToolRunner_TurnBudget(t *testing.T) {
	loop := func() *ai.ChatResponse {
		r := toolTurn(ai.ToolCall{ID: "x", Name: "echo", Arguments: `{"symbol":"A"}`})
		return r
	}

	t.Run("returns last text", func(t *testing.T) {
		withText := loop()
		withText.Message.Content = "thinking about A"
		chatter := &scriptedChatter{responses: []*ai.ChatResponse{withText, loop()}}

		out, err := NewToolRunner(chatter, echoRegistry(), 2).Run(context.Background(), "s", "p")
		require.NoError(t, err)
		assert.Equal(t, "thinking about A", out)
		assert.Len(t, chatter.requests, 2)
	})

	t.Run("errors without any text", func(t *testing.T) {
		chatter := &scriptedChatter{responses: []*ai.ChatResponse{loop(), loop(), loop()}}

		_, err := NewToolRunner(chatter, echoRegistry(), 3).Run(context.Background(), "s", "p")
		assert.ErrorIs(t, err, errors.ErrToolLoopExhausted)
	})
}

func TestToolRunner_PropagatesModelErrors(t *testing.T) {
	chatter := &scriptedChatter{err: errors.ErrRateLimitExceeded}
	_, err := NewToolRunner(chatter, echoRegistry(), 0).Run(context.Background(), "s", "p")
	assert.ErrorIs(t, err, errors.ErrRateLimitExceeded)
}

func TestToolRunner_EmptyAnswer(t *testing.T) {
	chatter := &scriptedChatter{responses: []*ai.ChatResponse{textTurn("   ")}}
	_, err := NewToolRunner(chatter, echoRegistry(), 2).Run(context.Background(), "s", "p")
	assert.ErrorIs(t, err, errors.ErrExternal)
}
