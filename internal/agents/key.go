package agents

import (
	"strings"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// AgentKey identifies one specialist the router can select.
type AgentKey string

const (
	AgentFundamentals AgentKey = "fundamentals"
	AgentSentiment    AgentKey = "sentiment"
	AgentTrading      AgentKey = "trading"
	AgentSearch       AgentKey = "search"
)

// AllAgentKeys lists every specialist in routing-prompt order.
var AllAgentKeys = []AgentKey{AgentFundamentals, AgentSentiment, AgentTrading, AgentSearch}

// ParseAgentKey maps a routing label onto a known specialist.
func ParseAgentKey(s string) (AgentKey, error) {
	k := AgentKey(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", errors.Wrapf(errors.ErrUnknownAgent, "%q", s)
	}
	return k, nil
}

// IsValid reports whether k is one of the four specialists.
func (k AgentKey) IsValid() bool {
	switch k {
	case AgentFundamentals, AgentSentiment, AgentTrading, AgentSearch:
		return true
	default:
		return false
	}
}

func (k AgentKey) String() string { return string(k) }

// Title is the key with its first letter upper-cased, used in section headings.
func (k AgentKey) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

func agentKeyStrings() []string {
	out := make([]string, len(AllAgentKeys))
	for i, k := range AllAgentKeys {
		out[i] = string(k)
	}
	return out
}
