package posts

import (
	"context"
	"fmt"
	"time"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// DefaultRetryWait is the pause before the single retry of a failed relevance check
const DefaultRetryWait = 30 * time.Second

const relevanceInstruction = `You are an expert financial analyst specializing in stock markets and international trade.
Your task is to determine if the provided text specifically relates to:
1. Stock markets (indexes, individual stocks, market trends, investor sentiment)
2. Tariffs and trade policies (import/export taxes, trade agreements, sanctions)
3. Economic policies that directly affect stock markets or tariffs
4. Market reactions to economic policies (e.g. buying/selling stocks based on tariffs)
5. Comments about taking action on financial institutions or stock exchanges

Only mark content as relevant if it directly discusses these specific topics.

Respond with ONLY a clean, properly formatted JSON object: {"is_relevant": true/false}
No additional text, comments, or whitespace before or after the JSON.`

const relevancePromptTemplate = `Here is a social media post. Determine if it's specifically related to stock markets or tariffs:

"%s"

Return ONLY {"is_relevant": true} if related to stock markets or tariffs, or {"is_relevant": false} if not.
Examples of relevant content:
- Discussion of stock prices, market performance, or specific companies' stock
- Discussion of tariffs, import/export taxes, or trade agreements
- References to market reactions to economic policies
- Comments about stock market indices like Dow Jones, S&P 500, or NASDAQ

Return false for general economic topics that don't specifically mention stock markets or tariffs.`

// RelevanceResponse is the classifier verdict for one post
type RelevanceResponse struct {
	IsRelevant *bool `json:"is_relevant"`
}

// Schema describes the verdict object
func (RelevanceResponse) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"is_relevant": map[string]interface{}{"type": "boolean"},
		},
		"required":             []string{"is_relevant"},
		"additionalProperties": false,
	}
}

// Validate requires the verdict to be present
func (r RelevanceResponse) Validate() error {
	if r.IsRelevant == nil {
		return errors.NewValidationError("is_relevant", "is required", nil)
	}
	return nil
}

// RelevanceFilter decides whether a post talks about stock markets or tariffs
type RelevanceFilter struct {
	llm       ai.JSONGenerator
	retryWait time.Duration
	log       *logger.Logger
}

// NewRelevanceFilter creates a filter. A non-positive retryWait uses DefaultRetryWait.
func NewRelevanceFilter(llm ai.JSONGenerator, retryWait time.Duration) *RelevanceFilter {
	if retryWait <= 0 {
		retryWait = DefaultRetryWait
	}
	return &RelevanceFilter{
		llm:       llm,
		retryWait: retryWait,
		log:       logger.Get().With("component", "relevance_filter"),
	}
}

// IsRelevant classifies content, retrying once after a fixed wait
func (f *RelevanceFilter) IsRelevant(ctx context.Context, content string) (bool, error) {
	prompt := fmt.Sprintf(relevancePromptTemplate, content)

	verdict, err := ai.GenerateStructured[RelevanceResponse](ctx, f.llm, relevanceInstruction, prompt)
	if err != nil {
		f.log.Warnf("relevance check failed, retrying in %s: %v", f.retryWait, err)

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(f.retryWait):
		}

		verdict, err = ai.GenerateStructured[RelevanceResponse](ctx, f.llm, relevanceInstruction, prompt)
		if err != nil {
			return false, errors.Wrap(err, "relevance check")
		}
	}

	return *verdict.IsRelevant, nil
}
