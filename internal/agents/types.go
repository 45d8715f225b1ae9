package agents

import (
	"fmt"
	"strings"
	"time"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// Turn is one prior message of the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a client-submitted conversational turn.
type ChatRequest struct {
	Message string `json:"message"`
	Ticker  string `json:"ticker,omitempty"`
	History []Turn `json:"history,omitempty"`
}

// Validate rejects requests without a message.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return errors.NewValidationError("message", "message is required", r.Message)
	}
	return nil
}

// Transcript serializes history and the current message, one "role: content" line per turn.
func (r ChatRequest) Transcript() string {
	var b strings.Builder
	for _, turn := range r.History {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	b.WriteString("user: ")
	b.WriteString(r.Message)
	return b.String()
}

// ChatResponse is the buffered answer.
type ChatResponse struct {
	Response string `json:"response"`
}

// RoutingDecision is the router's structured output. Ticker and Question
// are empty when the model returned null.
type RoutingDecision struct {
	Agents   []AgentKey `json:"agents"`
	Ticker   string     `json:"ticker"`
	Question string     `json:"question"`
}

// Schema describes the decision to the model.
func (RoutingDecision) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"agents": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string", "enum": agentKeyStrings()},
			},
			"ticker":   map[string]interface{}{"type": []string{"string", "null"}},
			"question": map[string]interface{}{"type": []string{"string", "null"}},
		},
		"required": []string{"agents", "ticker", "question"},
	}
}

// Validate fails when the model named an agent outside the enumeration.
func (d RoutingDecision) Validate() error {
	for i, k := range d.Agents {
		if !k.IsValid() {
			return errors.NewValidationError(fmt.Sprintf("agents[%d]", i), errors.ErrUnknownAgent.Error(), string(k))
		}
	}
	return nil
}

// Normalize collapses duplicate agents to their first occurrence and tidies
// the ticker and question.
func (d RoutingDecision) Normalize() RoutingDecision {
	seen := make(map[AgentKey]bool, len(d.Agents))
	agents := make([]AgentKey, 0, len(d.Agents))
	for _, k := range d.Agents {
		if seen[k] {
			continue
		}
		seen[k] = true
		agents = append(agents, k)
	}

	return RoutingDecision{
		Agents:   agents,
		Ticker:   strings.ToUpper(strings.TrimSpace(d.Ticker)),
		Question: strings.TrimSpace(d.Question),
	}
}

// AgentResult is one specialist's outcome. Exactly one of Output and Err is meaningful.
type AgentResult struct {
	Key      AgentKey
	Output   string
	Err      error
	Duration time.Duration
}

// Text is the trimmed output, or the labeled error placeholder on failure.
func (r AgentResult) Text() string {
	if r.Err != nil {
		return fmt.Sprintf("**%s** error: %v", r.Key, r.Err)
	}
	return strings.TrimSpace(r.Output)
}
