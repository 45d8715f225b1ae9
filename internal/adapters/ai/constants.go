package ai

import "strings"

// ProviderName represents an AI provider identifier
type ProviderName string

const (
	ProviderNameGroq   ProviderName = "groq"
	ProviderNameOpenAI ProviderName = "openai"
	ProviderNameGemini ProviderName = "gemini"
)

// ParseProviderName normalizes a configured provider name
func ParseProviderName(s string) ProviderName {
	return ProviderName(strings.ToLower(strings.TrimSpace(s)))
}

func (p ProviderName) String() string {
	return string(p)
}

// IsValid checks if the provider name is supported
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderNameGroq, ProviderNameOpenAI, ProviderNameGemini:
		return true
	default:
		return false
	}
}

// Default endpoints and models
const (
	GroqBaseURL = "https://api.groq.com/openai/v1"

	DefaultGroqModel   = "meta-llama/llama-4-scout-17b-16e-instruct"
	DefaultOpenAIModel = "gpt-4.1-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// DefaultModel returns the model used when none is configured
func (p ProviderName) DefaultModel() string {
	switch p {
	case ProviderNameOpenAI:
		return DefaultOpenAIModel
	case ProviderNameGemini:
		return DefaultGeminiModel
	default:
		return DefaultGroqModel
	}
}
