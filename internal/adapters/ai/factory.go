package ai

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// NewProvider builds the ChatProvider selected by configuration.
func NewProvider(ctx context.Context, cfg config.AIConfig) (ChatProvider, error) {
	name := ParseProviderName(cfg.Provider)

	switch name {
	case ProviderNameGroq:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = GroqBaseURL
		}
		return NewOpenAIProvider(name, cfg.APIKey(), baseURL, cfg.Timeout)
	case ProviderNameOpenAI:
		return NewOpenAIProvider(name, cfg.APIKey(), cfg.BaseURL, cfg.Timeout)
	case ProviderNameGemini:
		return NewGeminiProvider(ctx, cfg.APIKey())
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported AI provider %q", cfg.Provider)
	}
}

// NewClientFromConfig wires provider, rate limiter and retry policy.
// redisClient is optional; it is only used when distributed limiting is enabled.
func NewClientFromConfig(ctx context.Context, cfg config.AIConfig, redisClient *redis.Client) (*Client, error) {
	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = provider.Name().DefaultModel()
	}

	limiter := NewRateLimiter(provider.Name(), RateLimitConfig{
		Model:        model,
		Enabled:      cfg.RateLimitRPM > 0,
		ReqPerMinute: cfg.RateLimitRPM,
		Burst:        cfg.RateLimitBurst,
		Distributed:  cfg.RateLimitDistributed,
	}, redisClient)

	return NewClient(provider, model,
		WithRateLimiter(limiter),
		WithRetries(cfg.MaxRetries, time.Second),
		WithTimeout(cfg.Timeout),
	), nil
}
