package financequery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// Client reads quotes, indicators, news and price history from a finance-query deployment.
// Free API - no authentication required
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a market data client
func NewClient(cfg config.MarketDataConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.Get().With("component", "financequery"),
	}
}

// NewsArticle is one headline returned by /v1/news
type NewsArticle struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Source string `json:"source,omitempty"`
	Img    string `json:"img,omitempty"`
	Time   string `json:"time,omitempty"`
}

// PricePoint is one OHLCV bar
type PricePoint struct {
	Time   string
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

type historicalBar struct {
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Quotes returns detailed quotes for the given symbols as the raw API payload
func (c *Client) Quotes(ctx context.Context, symbols ...string) (json.RawMessage, error) {
	if len(symbols) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "at least one symbol is required")
	}
	return c.get(ctx, "/v1/quotes", url.Values{"symbols": {strings.Join(symbols, ",")}})
}

// Indicators returns the technical indicator summary for a symbol
func (c *Client) Indicators(ctx context.Context, symbol, interval string) (json.RawMessage, error) {
	if interval == "" {
		interval = "1d"
	}
	return c.get(ctx, "/v1/indicators", url.Values{"symbol": {symbol}, "interval": {interval}})
}

// Similar returns stocks similar to the given symbol
func (c *Client) Similar(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.get(ctx, "/v1/similar", url.Values{"symbol": {symbol}})
}

// News returns the latest headlines for a symbol. The API answers either with
// a bare list or with an object holding a "news" list; both are accepted.
func (c *Client) News(ctx context.Context, symbol string) ([]NewsArticle, error) {
	raw, err := c.get(ctx, "/v1/news", url.Values{"symbol": {symbol}})
	if err != nil {
		return nil, err
	}

	var articles []NewsArticle
	if isJSONArray(raw) {
		err = json.Unmarshal(raw, &articles)
	} else {
		var wrapped struct {
			News []NewsArticle `json:"news"`
		}
		err = json.Unmarshal(raw, &wrapped)
		articles = wrapped.News
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode news response")
	}

	return articles, nil
}

// Historical returns OHLCV bars ordered by time
func (c *Client) Historical(ctx context.Context, symbol, timeRange, interval string) ([]PricePoint, error) {
	raw, err := c.get(ctx, "/v1/historical", url.Values{
		"symbol":   {symbol},
		"range":    {timeRange},
		"interval": {interval},
	})
	if err != nil {
		return nil, err
	}

	var bars map[string]historicalBar
	if err := json.Unmarshal(raw, &bars); err != nil {
		return nil, errors.Wrap(err, "decode historical response")
	}

	points := make([]PricePoint, 0, len(bars))
	for ts, bar := range bars {
		points = append(points, PricePoint{
			Time:   ts,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })

	return points, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create API request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "finance-query %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read API response")
	}

	c.log.Debugf("GET %s -> %d in %s", path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(errors.ErrNotFound, "finance-query %s: %s", path, excerpt(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, errors.Wrapf(errors.ErrExternal, "finance-query %s returned status %d: %s", path, resp.StatusCode, excerpt(body))
	}

	if !json.Valid(body) {
		return nil, errors.Wrapf(errors.ErrExternal, "finance-query %s returned invalid JSON", path)
	}

	return body, nil
}

// WrapList wraps a bare JSON list under key so tools always hand the model an object
func WrapList(key string, raw json.RawMessage) json.RawMessage {
	if !isJSONArray(raw) {
		return raw
	}
	return json.RawMessage(fmt.Sprintf(`{%q:%s}`, key, raw))
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
