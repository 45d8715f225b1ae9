package tools

import (
	"context"
	"math"
	"strings"

	"github.com/markcheno/go-talib"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/adapters/financequery"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// GetPriceLevels computes entry and exit levels from daily bars
const GetPriceLevels = "get_price_levels"

// minLevelBars is enough history for SMA(50) plus a MACD signal line
const minLevelBars = 60

// ohlc holds bar columns in chronological order, the layout ta-lib expects
type ohlc struct {
	High  []float64
	Low   []float64
	Close []float64
}

// NewGetPriceLevelsTool returns a tool that derives momentum, volatility and
// support/resistance from six months of daily bars.
func NewGetPriceLevelsTool(deps Deps) Tool {
	return New(GetPriceLevels, "Get computed trading levels for a stock: RSI, MACD, ATR, 20/50-day moving averages and 20-day support/resistance", []ai.ToolParameter{symbolParam},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarketData() {
				return nil, errors.Wrap(errors.ErrUnavailable, "get_price_levels: market data not configured")
			}

			symbol, err := RequiredStringArg(args, "symbol")
			if err != nil {
				return nil, err
			}
			symbol = strings.ToUpper(symbol)

			bars, err := deps.Market.Historical(ctx, symbol, "6mo", "1d")
			if err != nil {
				return nil, errors.Wrap(err, "get_price_levels")
			}
			if len(bars) < minLevelBars {
				return nil, errors.Wrapf(errors.ErrNotFound, "get_price_levels: need %d daily bars for %s, got %d", minLevelBars, symbol, len(bars))
			}

			levels := priceLevels(toOHLC(bars))
			levels["symbol"] = symbol
			return levels, nil
		})
}

// priceLevels computes the indicator summary. data must hold at least
// minLevelBars bars.
func priceLevels(data ohlc) map[string]interface{} {
	last := data.Close[len(data.Close)-1]

	rsi := lastValue(talib.Rsi(data.Close, 14))
	macd, signal, hist := talib.Macd(data.Close, 12, 26, 9)
	atr := lastValue(talib.Atr(data.High, data.Low, data.Close, 14))
	sma20 := lastValue(talib.Sma(data.Close, 20))
	sma50 := lastValue(talib.Sma(data.Close, 50))

	support := lastValue(talib.Min(data.Low, 20))
	resistance := lastValue(talib.Max(data.High, 20))

	trend := "sideways"
	switch {
	case last > sma20 && sma20 > sma50:
		trend = "uptrend"
	case last < sma20 && sma20 < sma50:
		trend = "downtrend"
	}

	return map[string]interface{}{
		"last_close": round2(last),
		"trend":      trend,
		"rsi": map[string]interface{}{
			"value":  round2(rsi),
			"signal": rsiSignal(rsi),
		},
		"macd": map[string]interface{}{
			"line":      round2(lastValue(macd)),
			"signal":    round2(lastValue(signal)),
			"histogram": round2(lastValue(hist)),
		},
		"atr":            round2(atr),
		"atr_pct":        round2(atr / last * 100),
		"sma_20":         round2(sma20),
		"sma_50":         round2(sma50),
		"support_20d":    round2(support),
		"resistance_20d": round2(resistance),
		// One ATR below support is a common stop for dip buys
		"suggested_stop": round2(support - atr),
	}
}

func toOHLC(bars []financequery.PricePoint) ohlc {
	data := ohlc{
		High:  make([]float64, len(bars)),
		Low:   make([]float64, len(bars)),
		Close: make([]float64, len(bars)),
	}
	for i, bar := range bars {
		data.High[i] = bar.High.InexactFloat64()
		data.Low[i] = bar.Low.InexactFloat64()
		data.Close[i] = bar.Close.InexactFloat64()
	}
	return data
}

func rsiSignal(rsi float64) string {
	switch {
	case rsi < 30:
		return "oversold"
	case rsi > 70:
		return "overbought"
	case rsi > 50:
		return "bullish"
	default:
		return "bearish"
	}
}

func lastValue(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
