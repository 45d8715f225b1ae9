package ai

import (
	"context"
	"encoding/json"
	"iter"
	"time"

	"github.com/Verdenroz/buff-ai/internal/metrics"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// Client is the single text-generation entry point used by the router,
// the specialists and the synthesizer. It adds rate limiting, retries and
// metrics on top of a ChatProvider.
type Client struct {
	provider   ChatProvider
	model      string
	limiter    RateLimiter
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	log        *logger.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithRateLimiter sets the limiter consulted before every provider call
func WithRateLimiter(l RateLimiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithRetries sets how often a failed call is retried and the initial backoff
func WithRetries(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// WithTimeout bounds each non-streaming call
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client for one provider and model
func NewClient(provider ChatProvider, model string, opts ...ClientOption) *Client {
	if model == "" {
		model = provider.Name().DefaultModel()
	}

	c := &Client{
		provider: provider,
		model:    model,
		limiter:  NewNoOpLimiter(),
		backoff:  500 * time.Millisecond,
		log:      logger.Get().With("component", "llm_client", "provider", provider.Name()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model every request defaults to
func (c *Client) Model() string {
	return c.model
}

// Generate answers a prompt under a system instruction and returns plain text
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.complete(ctx, "chat", ChatRequest{
		Messages: []Message{SystemMessage(system), UserMessage(prompt)},
	})
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

// GenerateJSON asks for a single JSON object matching schema. The schema is
// appended to the system instruction since not every provider accepts one
// natively.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string, schema map[string]interface{}) (string, error) {
	if schema != nil {
		encoded, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return "", errors.Wrap(err, "failed to encode output schema")
		}
		system = system + "\nThe JSON object must use the schema: " + string(encoded)
	}

	resp, err := c.complete(ctx, "json", ChatRequest{
		Messages: []Message{SystemMessage(system), UserMessage(prompt)},
		JSONMode: true,
	})
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

// Chat sends a full conversation, typically with tools attached
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	mode := "chat"
	if len(req.Tools) > 0 {
		mode = "tools"
	}
	return c.complete(ctx, mode, req)
}

// Stream yields the answer as text fragments. Only the connection attempt
// is retried; once a fragment was yielded an error ends the sequence.
func (c *Client) Stream(ctx context.Context, system, prompt string) iter.Seq2[string, error] {
	return c.StreamChat(ctx, ChatRequest{
		Messages: []Message{SystemMessage(system), UserMessage(prompt)},
	})
}

// StreamChat is Stream for a prepared conversation
func (c *Client) StreamChat(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	if req.Model == "" {
		req.Model = c.model
	}

	return func(yield func(string, error) bool) {
		start := time.Now()
		var usage Usage
		var streamErr error
		defer func() {
			metrics.RecordLLMCall(c.provider.Name().String(), "stream", time.Since(start),
				usage.PromptTokens, usage.CompletionTokens, streamErr)
		}()

		for attempt := 0; ; attempt++ {
			if err := c.limiter.Wait(ctx); err != nil {
				streamErr = err
				yield("", err)
				return
			}

			emitted := false
			for chunk, err := range c.provider.ChatStream(ctx, req) {
				if err != nil {
					streamErr = err
					break
				}
				if chunk.Usage != nil {
					usage = *chunk.Usage
				}
				if chunk.Content == "" {
					continue
				}
				emitted = true
				if !yield(chunk.Content, nil) {
					return
				}
			}

			if streamErr == nil {
				return
			}
			if emitted || !c.shouldRetry(ctx, streamErr, attempt) {
				yield("", streamErr)
				return
			}

			c.log.Warnf("stream attempt %d failed, retrying: %v", attempt+1, streamErr)
			if err := c.sleep(ctx, attempt); err != nil {
				streamErr = err
				yield("", err)
				return
			}
			streamErr = nil
		}
	}
}

func (c *Client) complete(ctx context.Context, mode string, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, mode, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !c.shouldRetry(ctx, err, attempt) {
			break
		}

		c.log.Warnf("%s call attempt %d failed, retrying: %v", mode, attempt+1, err)
		if err := c.sleep(ctx, attempt); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, mode string, req ChatRequest) (*ChatResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.provider.Chat(callCtx, req)

	var usage Usage
	if resp != nil {
		usage = resp.Usage
	}
	metrics.RecordLLMCall(c.provider.Name().String(), mode, time.Since(start), usage.PromptTokens, usage.CompletionTokens, err)

	if err != nil {
		if callCtx.Err() != nil && ctx.Err() == nil {
			return nil, errors.Wrapf(errors.ErrTimeout, "%s call exceeded %s", c.provider.Name(), c.timeout)
		}
		return nil, err
	}

	return resp, nil
}

func (c *Client) shouldRetry(ctx context.Context, err error, attempt int) bool {
	if attempt >= c.maxRetries || ctx.Err() != nil {
		return false
	}
	// Bad requests fail the same way every time
	return !errors.Is(err, errors.ErrInvalidInput)
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	wait := c.backoff << attempt
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
