package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Verdenroz/buff-ai/internal/adapters/financequery"
	"github.com/Verdenroz/buff-ai/internal/agents"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// DefaultPeriod is used when /price is called without a period
const DefaultPeriod = "1d"

// periodIntervals maps each supported period to its bar size
var periodIntervals = map[string]string{
	"1d":  "5m",
	"5d":  "15m",
	"1mo": "1d",
}

// SentimentAnalyzer scores news sentiment. *agents.Sentiment implements it.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, ticker string) (*agents.SentimentResponse, error)
}

// PriceHistory returns OHLCV bars. *financequery.Client implements it.
type PriceHistory interface {
	Historical(ctx context.Context, symbol, timeRange, interval string) ([]financequery.PricePoint, error)
}

// priceBar keeps the column names charting clients expect
type priceBar struct {
	Open   float64 `json:"Open"`
	High   float64 `json:"High"`
	Low    float64 `json:"Low"`
	Close  float64 `json:"Close"`
	Volume int64   `json:"Volume"`
}

// MarketHandler serves per-ticker sentiment and price history
type MarketHandler struct {
	sentiment SentimentAnalyzer
	prices    PriceHistory
}

// NewMarketHandler creates the market endpoints
func NewMarketHandler(sentiment SentimentAnalyzer, prices PriceHistory) *MarketHandler {
	return &MarketHandler{sentiment: sentiment, prices: prices}
}

// Register mounts the market routes
func (h *MarketHandler) Register(g *echo.Group) {
	g.GET("/sentiment/:ticker", h.handleSentiment)
	g.GET("/price/:ticker", h.handlePrice)
}

func (h *MarketHandler) handleSentiment(c echo.Context) error {
	ticker, err := tickerParam(c)
	if err != nil {
		return err
	}

	resp, err := h.sentiment.Analyze(c.Request().Context(), ticker)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *MarketHandler) handlePrice(c echo.Context) error {
	ticker, err := tickerParam(c)
	if err != nil {
		return err
	}

	period := c.QueryParam("period")
	if period == "" {
		period = DefaultPeriod
	}
	interval, ok := periodIntervals[period]
	if !ok {
		return errors.NewValidationError("period", "period must be one of 1d, 5d, 1mo", period)
	}

	points, err := h.prices.Historical(c.Request().Context(), ticker, period, interval)
	if err != nil {
		return err
	}

	out := make(map[string]priceBar, len(points))
	for _, p := range points {
		out[p.Time] = priceBar{
			Open:   p.Open.InexactFloat64(),
			High:   p.High.InexactFloat64(),
			Low:    p.Low.InexactFloat64(),
			Close:  p.Close.InexactFloat64(),
			Volume: p.Volume,
		}
	}
	return c.JSON(http.StatusOK, out)
}

func tickerParam(c echo.Context) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	if ticker == "" || len(ticker) > 12 {
		return "", errors.NewValidationError("ticker", "invalid ticker", c.Param("ticker"))
	}
	return ticker, nil
}
