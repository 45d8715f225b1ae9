package ai

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// minRedisWait keeps a drained bucket from being polled in a hot loop
const minRedisWait = 10 * time.Millisecond

// RedisRateLimiter is a token bucket shared through Redis, so every replica
// calling the same provider model draws from one quota.
type RedisRateLimiter struct {
	client   *redis.Client
	provider ProviderName
	key      string
	rate     float64 // tokens per second
	burst    int
	script   *redis.Script
}

// takeTokenScript refills the bucket using the Redis clock, then takes one
// token. It returns 0 when a token was taken, otherwise the milliseconds
// until the next one.
//
// KEYS[1] bucket hash; ARGV[1] rate per second; ARGV[2] burst
const takeTokenScript = `
redis.replicate_commands()

local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])

local t = redis.call('TIME')
local now = tonumber(t[1]) + tonumber(t[2]) / 1000000

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now

tokens = math.min(burst, tokens + math.max(0, now - ts) * rate)

local wait = 0
if tokens >= 1 then
    tokens = tokens - 1
else
    wait = math.ceil((1 - tokens) / rate * 1000)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('EXPIRE', KEYS[1], math.ceil(burst / rate) + 1)

return wait
`

// NewRedisRateLimiter creates a limiter for one provider model. An empty
// model shares the bucket across every model of the provider.
func NewRedisRateLimiter(client *redis.Client, provider ProviderName, model string, reqPerMinute float64, burst int) *RedisRateLimiter {
	key := fmt.Sprintf("buffai:llm_rate:%s", provider)
	if model != "" {
		key += ":" + model
	}

	return &RedisRateLimiter{
		client:   client,
		provider: provider,
		key:      key,
		rate:     reqPerMinute / 60.0,
		burst:    normalizeBurst(reqPerMinute, burst),
		script:   redis.NewScript(takeTokenScript),
	}
}

// Wait blocks until the shared bucket hands out a token
func (l *RedisRateLimiter) Wait(ctx context.Context) error {
	for {
		wait, err := l.take(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return l.cancelled(ctx)
			}
			return errors.Wrapf(err, "redis rate limiter for %s", l.provider)
		}
		if wait == 0 {
			return nil
		}

		timer := time.NewTimer(max(wait, minRedisWait))
		select {
		case <-ctx.Done():
			timer.Stop()
			return l.cancelled(ctx)
		case <-timer.C:
		}
	}
}

// Allow takes a token if one is available. Redis errors deny the request.
func (l *RedisRateLimiter) Allow() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	wait, err := l.take(ctx)
	return err == nil && wait == 0
}

// Limit returns the rate in requests per minute
func (l *RedisRateLimiter) Limit() float64 {
	return l.rate * 60.0
}

// Tokens reports the tokens left as of the last take. A bucket nobody has
// used recently is full.
func (l *RedisRateLimiter) Tokens(ctx context.Context) (float64, error) {
	tokens, err := l.client.HGet(ctx, l.key, "tokens").Float64()
	if errors.Is(err, redis.Nil) {
		return float64(l.burst), nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "read rate limiter bucket")
	}
	return tokens, nil
}

// Reset refills the bucket
func (l *RedisRateLimiter) Reset(ctx context.Context) error {
	return l.client.Del(ctx, l.key).Err()
}

func (l *RedisRateLimiter) take(ctx context.Context) (time.Duration, error) {
	ms, err := l.script.Run(ctx, l.client, []string{l.key}, l.rate, l.burst).Int64()
	if err != nil {
		return 0, errors.Wrap(err, "run token bucket script")
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (l *RedisRateLimiter) cancelled(ctx context.Context) error {
	return &RateLimitError{
		Provider: l.provider,
		Limit:    math.Round(l.Limit()),
		Err:      errors.Wrap(ctx.Err(), "rate limiter wait cancelled"),
	}
}
