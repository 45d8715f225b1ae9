package tools

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/adapters/financequery"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// risingBars returns n daily bars closing at 100, 101, 102... with a 2-point range
func risingBars(n int) []financequery.PricePoint {
	bars := make([]financequery.PricePoint, n)
	for i := range bars {
		c := int64(100 + i)
		bars[i] = financequery.PricePoint{
			Open:  decimal.NewFromInt(c),
			High:  decimal.NewFromInt(c + 1),
			Low:   decimal.NewFromInt(c - 1),
			Close: decimal.NewFromInt(c),
		}
	}
	return bars
}

func TestGetPriceLevelsTool(t *testing.T) {
	ctx := context.Background()

	t.Run("steady uptrend", func(t *testing.T) {
		market := &fakeMarket{bars: risingBars(120)}
		tool := NewGetPriceLevelsTool(Deps{Market: market})

		out, err := tool.Execute(ctx, map[string]interface{}{"symbol": "aapl"})
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL"}, market.symbols)
		assert.Equal(t, "1d", market.interval)

		levels := out.(map[string]interface{})
		assert.Equal(t, "AAPL", levels["symbol"])
		assert.Equal(t, "uptrend", levels["trend"])
		assert.Equal(t, 219.0, levels["last_close"])
		assert.Equal(t, 209.5, levels["sma_20"])
		assert.Equal(t, 194.5, levels["sma_50"])
		assert.Equal(t, 199.0, levels["support_20d"])
		assert.Equal(t, 220.0, levels["resistance_20d"])
		assert.InDelta(t, 2.0, levels["atr"], 0.01)
		assert.InDelta(t, 197.0, levels["suggested_stop"], 0.01)

		rsi := levels["rsi"].(map[string]interface{})
		assert.Equal(t, "overbought", rsi["signal"])
	})

	t.Run("not enough history", func(t *testing.T) {
		tool := NewGetPriceLevelsTool(Deps{Market: &fakeMarket{bars: risingBars(10)}})

		_, err := tool.Execute(ctx, map[string]interface{}{"symbol": "NEWCO"})
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("missing symbol", func(t *testing.T) {
		tool := NewGetPriceLevelsTool(Deps{Market: &fakeMarket{}})

		_, err := tool.Execute(ctx, map[string]interface{}{})
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("no market data", func(t *testing.T) {
		_, err := NewGetPriceLevelsTool(Deps{}).Execute(ctx, map[string]interface{}{"symbol": "AAPL"})
		assert.ErrorIs(t, err, errors.ErrUnavailable)
	})
}

func TestRSISignal(t *testing.T) {
	tests := []struct {
		rsi  float64
		want string
	}{
		{25, "oversold"},
		{45, "bearish"},
		{60, "bullish"},
		{80, "overbought"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rsiSignal(tt.rsi))
	}
}
