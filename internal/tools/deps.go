package tools

import (
	"context"
	"encoding/json"

	"github.com/Verdenroz/buff-ai/internal/adapters/financequery"
	"github.com/Verdenroz/buff-ai/internal/adapters/tavily"
	"github.com/Verdenroz/buff-ai/internal/domain/post"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// MarketData is the subset of the finance-query client the tools use
type MarketData interface {
	Quotes(ctx context.Context, symbols ...string) (json.RawMessage, error)
	Indicators(ctx context.Context, symbol, interval string) (json.RawMessage, error)
	Similar(ctx context.Context, symbol string) (json.RawMessage, error)
	News(ctx context.Context, symbol string) ([]financequery.NewsArticle, error)
	Historical(ctx context.Context, symbol, timeRange, interval string) ([]financequery.PricePoint, error)
}

// WebSearch runs one web search query
type WebSearch interface {
	Search(ctx context.Context, req tavily.SearchRequest) (*tavily.Response, error)
}

// PostReader lists stored posts for an author
type PostReader interface {
	Recent(ctx context.Context, authorKey string, limit int) ([]post.Post, error)
}

// Deps bundles dependencies required by concrete tool implementations
type Deps struct {
	Market MarketData
	Search WebSearch
	Posts  PostReader
	Log    *logger.Logger
}

// HasMarketData reports whether the market data client is available
func (d Deps) HasMarketData() bool {
	return d.Market != nil
}

// HasSearch reports whether web search is available
func (d Deps) HasSearch() bool {
	return d.Search != nil
}

// HasPosts reports whether the post store is available
func (d Deps) HasPosts() bool {
	return d.Posts != nil
}

func (d Deps) logger() *logger.Logger {
	if d.Log != nil {
		return d.Log
	}
	return logger.Get().With("component", "tools")
}
