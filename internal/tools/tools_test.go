package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/adapters/financequery"
	"github.com/Verdenroz/buff-ai/internal/adapters/tavily"
	"github.com/Verdenroz/buff-ai/internal/domain/post"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

type fakeMarket struct {
	symbols  []string
	interval string
	bars     []financequery.PricePoint
}

func (m *fakeMarket) Quotes(_ context.Context, symbols ...string) (json.RawMessage, error) {
	m.symbols = symbols
	return json.RawMessage(`[{"symbol":"AAPL","price":"190.1"}]`), nil
}

func (m *fakeMarket) Indicators(_ context.Context, symbol, interval string) (json.RawMessage, error) {
	m.symbols = []string{symbol}
	m.interval = interval
	return json.RawMessage(`{"RSI(14)":{"value":55.2}}`), nil
}

func (m *fakeMarket) Similar(_ context.Context, symbol string) (json.RawMessage, error) {
	return nil, errors.Wrap(errors.ErrNotFound, symbol)
}

func (m *fakeMarket) News(_ context.Context, symbol string) ([]financequery.NewsArticle, error) {
	return []financequery.NewsArticle{{Title: symbol + " beats", Link: "https://n/1"}}, nil
}

func (m *fakeMarket) Historical(_ context.Context, symbol, timeRange, interval string) ([]financequery.PricePoint, error) {
	m.symbols = []string{symbol}
	m.interval = interval
	return m.bars, nil
}

type fakeSearch struct {
	req tavily.SearchRequest
}

func (s *fakeSearch) Search(_ context.Context, req tavily.SearchRequest) (*tavily.Response, error) {
	s.req = req
	return &tavily.Response{Results: []tavily.Result{{Title: "t", URL: "u", Content: "c"}}}, nil
}

type fakePosts struct {
	author string
	limit  int
}

func (p *fakePosts) Recent(_ context.Context, authorKey string, limit int) ([]post.Post, error) {
	p.author = authorKey
	p.limit = limit
	return []post.Post{{Author: "Donald J. Trump", Content: "hi", Date: 1}}, nil
}

func TestMarketTools(t *testing.T) {
	market := &fakeMarket{}
	deps := Deps{Market: market}
	ctx := context.Background()

	t.Run("get_quotes splits and uppercases symbols", func(t *testing.T) {
		result, err := NewGetQuotesTool(deps).Execute(ctx, map[string]interface{}{"symbols": " aapl, msft ,"})
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL", "MSFT"}, market.symbols)
		assert.JSONEq(t, `{"quotes":[{"symbol":"AAPL","price":"190.1"}]}`, string(result.(json.RawMessage)))
	})

	t.Run("get_quotes requires symbols", func(t *testing.T) {
		_, err := NewGetQuotesTool(deps).Execute(ctx, map[string]interface{}{})
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("get_technicals defaults interval", func(t *testing.T) {
		result, err := NewGetTechnicalsTool(deps).Execute(ctx, map[string]interface{}{"symbol": "nvda"})
		require.NoError(t, err)
		assert.Equal(t, []string{"NVDA"}, market.symbols)
		assert.Equal(t, "1d", market.interval)
		assert.JSONEq(t, `{"RSI(14)":{"value":55.2}}`, string(result.(json.RawMessage)))
	})

	t.Run("get_news", func(t *testing.T) {
		result, err := NewGetNewsTool(deps).Execute(ctx, map[string]interface{}{"symbol": "tsla"})
		require.NoError(t, err)
		news := result.(map[string]interface{})["news"].([]financequery.NewsArticle)
		assert.Equal(t, "TSLA beats", news[0].Title)
	})

	t.Run("get_similar propagates errors", func(t *testing.T) {
		_, err := NewGetSimilarTool(deps).Execute(ctx, map[string]interface{}{"symbol": "XYZ"})
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("missing market data", func(t *testing.T) {
		_, err := NewGetQuotesTool(Deps{}).Execute(ctx, map[string]interface{}{"symbols": "AAPL"})
		assert.ErrorIs(t, err, errors.ErrUnavailable)
	})
}

func TestGetSearchTool(t *testing.T) {
	search := &fakeSearch{}
	result, err := NewGetSearchTool(Deps{Search: search}).Execute(context.Background(), map[string]interface{}{"query": "AAPL earnings"})
	require.NoError(t, err)

	assert.Equal(t, tavily.SearchRequest{
		Query:       "AAPL earnings",
		SearchDepth: tavily.DepthAdvanced,
		Topic:       tavily.TopicFinance,
		MaxResults:  3,
	}, search.req)
	assert.Len(t, result.(map[string]interface{})["results"], 1)
}

func TestGetRecentPostsTool(t *testing.T) {
	posts := &fakePosts{}
	tool := NewGetRecentPostsTool(Deps{Posts: posts})

	_, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPostAuthor, posts.author)
	assert.Equal(t, post.DefaultRecentLimit, posts.limit)

	_, err = tool.Execute(context.Background(), map[string]interface{}{"author": "elon"})
	require.NoError(t, err)
	assert.Equal(t, "elon", posts.author)
}
