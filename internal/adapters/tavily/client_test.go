package tavily

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "tvly-key", payload["api_key"])
		assert.Equal(t, "good stocks", payload["query"])
		assert.Equal(t, "advanced", payload["search_depth"])
		assert.Equal(t, "finance", payload["topic"])
		assert.Equal(t, float64(3), payload["max_results"])

		_, _ = io.WriteString(w, `{"query":"good stocks","results":[{"title":"Top picks","url":"https://x","content":"Buy AAPL and MSFT","score":0.9}]}`)
	}))
	defer server.Close()

	client := NewClient(config.SearchConfig{TavilyKey: "tvly-key", TavilyURL: server.URL, Timeout: 5 * time.Second})

	resp, err := client.Search(context.Background(), SearchRequest{
		Query:       "good stocks",
		SearchDepth: DepthAdvanced,
		Topic:       TopicFinance,
		MaxResults:  3,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Buy AAPL and MSFT", resp.Results[0].Content)
}

func TestClient_SearchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, "slow down")
	}))
	defer server.Close()

	tests := []struct {
		name  string
		key   string
		query string
		want  error
	}{
		{name: "empty query", key: "k", query: " ", want: errors.ErrInvalidInput},
		{name: "missing key", key: "", query: "q", want: errors.ErrUnavailable},
		{name: "rate limited", key: "k", query: "q", want: errors.ErrRateLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(config.SearchConfig{TavilyKey: tt.key, TavilyURL: server.URL, Timeout: time.Second})
			_, err := client.Search(context.Background(), SearchRequest{Query: tt.query})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}
