package financequery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.MarketDataConfig{BaseURL: server.URL + "/", Timeout: 5 * time.Second})
}

func TestClient_Quotes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/quotes", r.URL.Path)
		assert.Equal(t, "AAPL,MSFT", r.URL.Query().Get("symbols"))
		_, _ = io.WriteString(w, `[{"symbol":"AAPL","price":"190.1"},{"symbol":"MSFT","price":"420"}]`)
	})

	raw, err := client.Quotes(context.Background(), "AAPL", "MSFT")
	require.NoError(t, err)

	wrapped := WrapList("quotes", raw)
	var decoded map[string][]map[string]string
	require.NoError(t, json.Unmarshal(wrapped, &decoded))
	assert.Len(t, decoded["quotes"], 2)
}

func TestClient_QuotesRequiresSymbol(t *testing.T) {
	client := NewClient(config.MarketDataConfig{BaseURL: "http://unused"})
	_, err := client.Quotes(context.Background())
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestClient_IndicatorsDefaultsInterval(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/indicators", r.URL.Path)
		assert.Equal(t, "NVDA", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = io.WriteString(w, `{"RSI(14)":{"RSI":61.2}}`)
	})

	raw, err := client.Indicators(context.Background(), "NVDA", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"RSI(14)":{"RSI":61.2}}`, string(WrapList("indicators", raw)))
}

func TestClient_News(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bare list", body: `[{"title":"Apple beats","link":"https://x/1"},{"title":"","link":"https://x/2"}]`},
		{name: "wrapped", body: `{"news":[{"title":"Apple beats","link":"https://x/1"},{"title":"","link":"https://x/2"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
				_, _ = io.WriteString(w, tt.body)
			})

			articles, err := client.News(context.Background(), "AAPL")
			require.NoError(t, err)
			require.Len(t, articles, 2)
			assert.Equal(t, "Apple beats", articles[0].Title)
			assert.Equal(t, "https://x/1", articles[0].Link)
		})
	}
}

func TestClient_Historical(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "5d", q.Get("range"))
		assert.Equal(t, "15m", q.Get("interval"))
		_, _ = io.WriteString(w, `{
			"2025-04-02 10:00:00": {"open": 101.5, "high": 102, "low": 100.25, "close": 101.75, "volume": 2000},
			"2025-04-02 09:45:00": {"open": 100, "high": 101.6, "low": 99.9, "close": 101.5, "volume": 1500}
		}`)
	})

	points, err := client.Historical(context.Background(), "TSLA", "5d", "15m")
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2025-04-02 09:45:00", points[0].Time)
	assert.True(t, decimal.RequireFromString("101.5").Equal(points[0].Close))
	assert.Equal(t, int64(2000), points[1].Volume)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "not found", status: http.StatusNotFound, want: errors.ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, want: errors.ErrExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"detail":"nope"}`)
			})

			_, err := client.Similar(context.Background(), "ZZZZ")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestWrapList_LeavesObjectsAlone(t *testing.T) {
	raw := json.RawMessage(`{"symbol":"AAPL"}`)
	assert.Equal(t, raw, WrapList("quotes", raw))
}
