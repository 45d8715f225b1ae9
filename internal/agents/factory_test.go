package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// fakeClient combines the text and tool-calling fakes into one LLM
type fakeClient struct {
	*fakeLLM
	*scriptedChatter
}

func TestNewAgents(t *testing.T) {
	client := fakeClient{
		fakeLLM:         &fakeLLM{route: routeTo([]string{"fundamentals"}, "AAPL", ""), answer: "report"},
		scriptedChatter: &scriptedChatter{responses: []*ai.ChatResponse{textTurn("P/E is 30")}},
	}

	built, err := NewAgents(FactoryDeps{
		LLM:          client,
		ToolRegistry: fullRegistry(),
		News:         fakeNews{},
		Web:          &fakeWeb{},
		MaxToolTurns: 3,
	})
	require.NoError(t, err)
	require.NotNil(t, built.Sentiment)

	resp, err := built.Supervisor.Handle(context.Background(), ChatRequest{Message: "apple P/E?"})
	require.NoError(t, err)
	assert.Equal(t, "report", resp.Response)
	assert.Contains(t, client.lastSynthesisPrompt(), "### Fundamentals Agent Output:\nP/E is 30")
}

func TestNewAgents_MissingDeps(t *testing.T) {
	_, err := NewAgents(FactoryDeps{})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
