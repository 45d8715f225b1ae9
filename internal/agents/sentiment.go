package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/adapters/financequery"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// maxHeadlines caps how many articles are put in front of the model
const maxHeadlines = 10

// NewsSource lists recent headlines for a symbol
type NewsSource interface {
	News(ctx context.Context, symbol string) ([]financequery.NewsArticle, error)
}

// KeyPoint is one sentiment driver with its source article
type KeyPoint struct {
	Point string `json:"point"`
	URL   string `json:"url"`
}

// SentimentResponse is the sentiment specialist's JSON document
type SentimentResponse struct {
	SentimentScore float64    `json:"sentiment_score"`
	KeyPoints      []KeyPoint `json:"key_points"`
}

// Schema describes the document to the model
func (SentimentResponse) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"sentiment_score": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
			"key_points": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"point": map[string]interface{}{"type": "string"},
						"url":   map[string]interface{}{"type": "string"},
					},
					"required": []string{"point", "url"},
				},
			},
		},
		"required": []string{"sentiment_score", "key_points"},
	}
}

// Validate rejects scores outside [0,1] and empty key points
func (r SentimentResponse) Validate() error {
	if r.SentimentScore < 0 || r.SentimentScore > 1 {
		return errors.NewValidationError("sentiment_score", "must be between 0 and 1", r.SentimentScore)
	}
	for i, kp := range r.KeyPoints {
		if strings.TrimSpace(kp.Point) == "" {
			return errors.NewValidationError(fmt.Sprintf("key_points[%d].point", i), "must not be empty", kp.Point)
		}
	}
	return nil
}

// ParseSentiment decodes and validates the specialist's text output
func ParseSentiment(text string) (*SentimentResponse, error) {
	var out SentimentResponse
	if err := ai.DecodeStructured(text, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sentiment scores the latest headlines for a ticker.
type Sentiment struct {
	llm  ai.JSONGenerator
	news NewsSource
}

// NewSentiment creates the sentiment specialist
func NewSentiment(llm ai.JSONGenerator, news NewsSource) *Sentiment {
	return &Sentiment{llm: llm, news: news}
}

// Invoke returns the sentiment JSON document as text
func (a *Sentiment) Invoke(ctx context.Context, ticker string) (string, error) {
	if ticker == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "a ticker is required for sentiment analysis")
	}

	articles, err := a.news.News(ctx, ticker)
	if err != nil {
		return "", errors.Wrapf(err, "fetch news for %s", ticker)
	}

	headlines := Headlines(articles)
	if headlines == "" {
		return "", errors.Wrapf(errors.ErrNotFound, "no headlines for %s", ticker)
	}

	return a.llm.GenerateJSON(ctx, sentimentInstruction, sentimentPrompt(ticker, headlines), SentimentResponse{}.Schema())
}

// Analyze returns the decoded sentiment document
func (a *Sentiment) Analyze(ctx context.Context, ticker string) (*SentimentResponse, error) {
	text, err := a.Invoke(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return ParseSentiment(text)
}

// Headlines renders the first articles as "- title (link)" lines, skipping
// any without a title or link.
func Headlines(articles []financequery.NewsArticle) string {
	if len(articles) > maxHeadlines {
		articles = articles[:maxHeadlines]
	}

	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" || a.Link == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", a.Title, a.Link))
	}
	return strings.Join(lines, "\n")
}
