package tools

import (
	"context"
	"strings"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/adapters/financequery"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// Tool names
const (
	GetQuotes      = "get_quotes"
	GetTechnicals  = "get_technicals"
	GetNews        = "get_news"
	GetSimilar     = "get_similar"
	GetSearch      = "get_search"
	GetRecentPosts = "get_recent_posts"
)

var symbolParam = ai.ToolParameter{Name: "symbol", Description: "Stock ticker symbol, e.g. AAPL", Required: true}

// NewGetQuotesTool returns a tool that fetches detailed quotes for one or more symbols.
func NewGetQuotesTool(deps Deps) Tool {
	params := []ai.ToolParameter{{
		Name:        "symbols",
		Description: "Comma-separated ticker symbols, e.g. AAPL,MSFT",
		Required:    true,
	}}

	return New(GetQuotes, "Get detailed quotes (price, market cap, P/E, 52-week range, earnings) for stock symbols", params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarketData() {
				return nil, errors.Wrap(errors.ErrUnavailable, "get_quotes: market data not configured")
			}

			raw, err := RequiredStringArg(args, "symbols")
			if err != nil {
				return nil, err
			}
			symbols := splitSymbols(raw)

			deps.logger().Debugw("Tool: get_quotes called", "symbols", symbols)

			quotes, err := deps.Market.Quotes(ctx, symbols...)
			if err != nil {
				return nil, errors.Wrap(err, "get_quotes")
			}
			return financequery.WrapList("quotes", quotes), nil
		})
}

// NewGetTechnicalsTool returns a tool that fetches technical indicators for a symbol.
func NewGetTechnicalsTool(deps Deps) Tool {
	params := []ai.ToolParameter{
		symbolParam,
		{Name: "interval", Description: "Bar interval: 1d (default), 1wk or 1mo"},
	}

	return New(GetTechnicals, "Get technical indicators (moving averages, RSI, MACD, Bollinger bands and more) for a stock", params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarketData() {
				return nil, errors.Wrap(errors.ErrUnavailable, "get_technicals: market data not configured")
			}

			symbol, err := RequiredStringArg(args, "symbol")
			if err != nil {
				return nil, err
			}
			interval := StringArg(args, "interval", "1d")

			indicators, err := deps.Market.Indicators(ctx, strings.ToUpper(symbol), interval)
			if err != nil {
				return nil, errors.Wrap(err, "get_technicals")
			}
			return financequery.WrapList("indicators", indicators), nil
		})
}

// NewGetNewsTool returns a tool that fetches recent headlines for a symbol.
func NewGetNewsTool(deps Deps) Tool {
	return New(GetNews, "Get recent news headlines with links for a stock", []ai.ToolParameter{symbolParam},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarketData() {
				return nil, errors.Wrap(errors.ErrUnavailable, "get_news: market data not configured")
			}

			symbol, err := RequiredStringArg(args, "symbol")
			if err != nil {
				return nil, err
			}

			news, err := deps.Market.News(ctx, strings.ToUpper(symbol))
			if err != nil {
				return nil, errors.Wrap(err, "get_news")
			}
			return map[string]interface{}{"news": news}, nil
		})
}

// NewGetSimilarTool returns a tool that lists stocks similar to a symbol.
func NewGetSimilarTool(deps Deps) Tool {
	return New(GetSimilar, "Get stocks similar to the given stock, useful for comparison and hedging", []ai.ToolParameter{symbolParam},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarketData() {
				return nil, errors.Wrap(errors.ErrUnavailable, "get_similar: market data not configured")
			}

			symbol, err := RequiredStringArg(args, "symbol")
			if err != nil {
				return nil, err
			}

			similar, err := deps.Market.Similar(ctx, strings.ToUpper(symbol))
			if err != nil {
				return nil, errors.Wrap(err, "get_similar")
			}
			return financequery.WrapList("similar", similar), nil
		})
}

func splitSymbols(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
