package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("GROQ_API_KEY", "gsk_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "buff-ai", cfg.App.Name)
	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "groq", cfg.AI.Provider)
	assert.Equal(t, "gsk_test", cfg.AI.APIKey())
	assert.Empty(t, cfg.AI.Model)
	assert.Equal(t, "https://finance-query.onrender.com", cfg.MarketData.BaseURL)
	assert.Equal(t, time.Hour, cfg.Storage.PresignTTL)
	assert.Equal(t, 720*time.Hour, cfg.Scraper.Lookback)
	assert.Equal(t, "trump", cfg.Scraper.AuthorKey)
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoad_MissingRedisHost(t *testing.T) {
	// Setenv registers the restore, Unsetenv makes the variable absent
	t.Setenv("REDIS_HOST", "")
	require.NoError(t, os.Unsetenv("REDIS_HOST"))
	t.Setenv("GROQ_API_KEY", "gsk_test")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ai      AIConfig
		wantErr bool
	}{
		{name: "groq with key", ai: AIConfig{Provider: "groq", GroqKey: "k", MaxToolTurns: 3}},
		{name: "gemini with key", ai: AIConfig{Provider: "Gemini", GeminiKey: "k", MaxToolTurns: 3}},
		{name: "openai without key", ai: AIConfig{Provider: "openai", GroqKey: "k", MaxToolTurns: 3}, wantErr: true},
		{name: "unknown provider", ai: AIConfig{Provider: "claude", MaxToolTurns: 3}, wantErr: true},
		{name: "no tool turns", ai: AIConfig{Provider: "groq", GroqKey: "k"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AI: tt.ai}
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
		})
	}
}
