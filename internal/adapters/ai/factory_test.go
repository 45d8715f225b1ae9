package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.AIConfig
		wantName ProviderName
		wantErr  bool
	}{
		{name: "groq", cfg: config.AIConfig{Provider: "groq", GroqKey: "k"}, wantName: ProviderNameGroq},
		{name: "openai mixed case", cfg: config.AIConfig{Provider: " OpenAI ", OpenAIKey: "k"}, wantName: ProviderNameOpenAI},
		{name: "groq without key", cfg: config.AIConfig{Provider: "groq"}, wantErr: true},
		{name: "unknown", cfg: config.AIConfig{Provider: "claude", GroqKey: "k"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(context.Background(), tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, provider.Name())
		})
	}
}

func TestNewClientFromConfig_DefaultsModel(t *testing.T) {
	client, err := NewClientFromConfig(context.Background(), config.AIConfig{
		Provider:     "groq",
		GroqKey:      "k",
		RateLimitRPM: 30,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultGroqModel, client.Model())
	assert.IsType(t, &TokenBucketLimiter{}, client.limiter)
}

func TestParseProviderName(t *testing.T) {
	assert.Equal(t, ProviderNameOpenAI, ParseProviderName("  OpenAI "))
	assert.True(t, ParseProviderName("GEMINI").IsValid())
	assert.False(t, ParseProviderName("anthropic").IsValid())
}
