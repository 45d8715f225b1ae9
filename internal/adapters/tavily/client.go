package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// Search depths and topics accepted by the API
const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"

	TopicGeneral = "general"
	TopicNews    = "news"
	TopicFinance = "finance"
)

// Client is a minimal Tavily web search client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a search client
func NewClient(cfg config.SearchConfig) *Client {
	return &Client{
		apiKey:     cfg.TavilyKey,
		baseURL:    strings.TrimRight(cfg.TavilyURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.Get().With("component", "tavily"),
	}
}

// SearchRequest describes one query
type SearchRequest struct {
	Query         string
	SearchDepth   string
	Topic         string
	MaxResults    int
	IncludeAnswer bool
}

// Result is one ranked hit
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Response is the search payload
type Response struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

type searchPayload struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	Topic         string `json:"topic"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

// Search runs a query. Defaults: basic depth, general topic, 5 results.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "search query is empty")
	}
	if c.apiKey == "" {
		return nil, errors.Wrap(errors.ErrUnavailable, "TAVILY_API_KEY is not configured")
	}

	payload := searchPayload{
		APIKey:        c.apiKey,
		Query:         req.Query,
		SearchDepth:   req.SearchDepth,
		Topic:         req.Topic,
		MaxResults:    req.MaxResults,
		IncludeAnswer: req.IncludeAnswer,
	}
	if payload.SearchDepth == "" {
		payload.SearchDepth = DepthBasic
	}
	if payload.Topic == "" {
		payload.Topic = TopicGeneral
	}
	if payload.MaxResults <= 0 {
		payload.MaxResults = 5
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode search request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create search request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "tavily search: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "tavily: %s", excerpt)
		}
		return nil, errors.Wrapf(errors.ErrExternal, "tavily returned status %d: %s", resp.StatusCode, excerpt)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode search response")
	}

	c.log.Debugf("search %q returned %d results", req.Query, len(out.Results))
	return &out, nil
}
