package agents

import (
	"context"
	"strings"
	"unicode"

	"github.com/Verdenroz/buff-ai/internal/adapters/tavily"
	"github.com/Verdenroz/buff-ai/internal/tools"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

const maxSymbolLen = 5

// Search finds stocks worth buying: it pulls candidate symbols out of a web
// search and has the model vet them with market data.
type Search struct {
	web    tools.WebSearch
	runner *ToolRunner
}

// NewSearch creates the stock search specialist
func NewSearch(llm ToolChatter, web tools.WebSearch, registry *tools.Registry, maxTurns int) (*Search, error) {
	subset, err := registry.Subset(tools.GetQuotes, tools.GetTechnicals, tools.GetNews)
	if err != nil {
		return nil, err
	}
	return &Search{web: web, runner: NewToolRunner(llm, subset, maxTurns)}, nil
}

// Recommend returns buy recommendations, or NoTrendingStocks when the
// search names no symbols
func (a *Search) Recommend(ctx context.Context) (string, error) {
	resp, err := a.web.Search(ctx, tavily.SearchRequest{
		Query:       trendingQuery,
		SearchDepth: tavily.DepthAdvanced,
		Topic:       tavily.TopicFinance,
		MaxResults:  3,
	})
	if err != nil {
		return "", errors.Wrap(err, "search trending stocks")
	}

	symbols := ExtractSymbols(resp.Results)
	if len(symbols) == 0 {
		return NoTrendingStocks, nil
	}

	return a.runner.Run(ctx, searchInstruction, searchPrompt(symbols))
}

// ExtractSymbols collects ticker-like words from result contents: all
// letters upper-case and at most five characters once surrounding
// punctuation is removed. First occurrences are kept, in order.
func ExtractSymbols(results []tavily.Result) []string {
	seen := make(map[string]bool)
	var symbols []string

	for _, r := range results {
		for _, word := range strings.Fields(r.Content) {
			word = strings.TrimFunc(word, func(c rune) bool {
				return unicode.IsPunct(c) || unicode.IsSymbol(c)
			})
			if !isSymbolLike(word) || seen[word] {
				continue
			}
			seen[word] = true
			symbols = append(symbols, word)
		}
	}
	return symbols
}

func isSymbolLike(word string) bool {
	if word == "" || len([]rune(word)) > maxSymbolLen {
		return false
	}
	hasLetter := false
	for _, c := range word {
		if unicode.IsLetter(c) {
			if !unicode.IsUpper(c) {
				return false
			}
			hasLetter = true
		}
	}
	return hasLetter
}
