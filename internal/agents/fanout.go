package agents

import (
	"context"
	"sync"
	"time"

	"github.com/Verdenroz/buff-ai/internal/metrics"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// FundamentalsAnalyst answers a question about one ticker's fundamentals.
type FundamentalsAnalyst interface {
	Analyze(ctx context.Context, ticker, question string) (string, error)
}

// SentimentAnalyst scores news sentiment for a ticker.
type SentimentAnalyst interface {
	Invoke(ctx context.Context, ticker string) (string, error)
}

// TradingStrategist proposes a strategy for a ticker.
type TradingStrategist interface {
	Invoke(ctx context.Context, ticker string) (string, error)
}

// StockScout recommends stocks to buy.
type StockScout interface {
	Recommend(ctx context.Context) (string, error)
}

// Specialists holds one implementation per AgentKey.
type Specialists struct {
	Fundamentals FundamentalsAnalyst
	Sentiment    SentimentAnalyst
	Trading      TradingStrategist
	Search       StockScout
}

// Dispatch calls the specialist behind key. The switch must cover every
// AgentKey; TestDispatchCoversAllKeys enforces it.
func (s Specialists) Dispatch(ctx context.Context, key AgentKey, ticker, question string) (string, error) {
	switch key {
	case AgentFundamentals:
		if s.Fundamentals == nil {
			return "", notConfigured(key)
		}
		return s.Fundamentals.Analyze(ctx, ticker, question)
	case AgentSentiment:
		if s.Sentiment == nil {
			return "", notConfigured(key)
		}
		return s.Sentiment.Invoke(ctx, ticker)
	case AgentTrading:
		if s.Trading == nil {
			return "", notConfigured(key)
		}
		return s.Trading.Invoke(ctx, ticker)
	case AgentSearch:
		if s.Search == nil {
			return "", notConfigured(key)
		}
		return s.Search.Recommend(ctx)
	default:
		return "", errors.Wrapf(errors.ErrUnknownAgent, "%q", key)
	}
}

func notConfigured(key AgentKey) error {
	return errors.Wrapf(errors.ErrUnavailable, "%s specialist is not configured", key)
}

// FanOut runs the selected specialists concurrently.
type FanOut struct {
	specialists Specialists
	log         *logger.Logger
}

// NewFanOut creates an executor over the given specialists
func NewFanOut(specialists Specialists) *FanOut {
	return &FanOut{
		specialists: specialists,
		log:         logger.Get().With("component", "fan_out"),
	}
}

// Run calls every key once, concurrently, and waits for all of them.
// results[i] belongs to keys[i] whatever the completion order, and a
// failure only ever lands in its own result.
func (f *FanOut) Run(ctx context.Context, keys []AgentKey, ticker, question string) []AgentResult {
	f.log.Infof("Starting parallel execution of %d agents", len(keys))
	startTime := time.Now()

	results := make([]AgentResult, len(keys))

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = f.runOne(ctx, key, ticker, question)
		}()
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	f.log.Infof("Parallel execution complete: %d/%d agents succeeded (duration: %v)",
		len(keys)-failed, len(keys), time.Since(startTime))

	return results
}

func (f *FanOut) runOne(ctx context.Context, key AgentKey, ticker, question string) (result AgentResult) {
	start := time.Now()
	result.Key = key

	defer func() {
		if p := recover(); p != nil {
			result.Err = errors.Wrapf(errors.ErrInternal, "panic: %v", p)
		}
		result.Duration = time.Since(start)
		metrics.RecordAgentCall(key.String(), result.Duration, result.Err)

		if result.Err != nil {
			f.log.Warnf("Agent %s failed: %v (duration: %v)", key, result.Err, result.Duration)
		} else {
			f.log.Debugf("Agent %s completed (duration: %v)", key, result.Duration)
		}
	}()

	output, err := f.specialists.Dispatch(ctx, key, ticker, question)
	if err != nil {
		result.Err = err
		return result
	}
	result.Output = output
	return result
}
