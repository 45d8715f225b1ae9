package tools

import (
	"context"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/adapters/tavily"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// NewGetSearchTool returns a tool that searches the web for finance content.
func NewGetSearchTool(deps Deps) Tool {
	params := []ai.ToolParameter{{Name: "query", Description: "Search query", Required: true}}

	return New(GetSearch, "Search the web for recent financial information about a company or market topic", params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasSearch() {
				return nil, errors.Wrap(errors.ErrUnavailable, "get_search: web search not configured")
			}

			query, err := RequiredStringArg(args, "query")
			if err != nil {
				return nil, err
			}

			resp, err := deps.Search.Search(ctx, tavily.SearchRequest{
				Query:       query,
				SearchDepth: tavily.DepthAdvanced,
				Topic:       tavily.TopicFinance,
				MaxResults:  3,
			})
			if err != nil {
				return nil, errors.Wrap(err, "get_search")
			}
			return map[string]interface{}{"results": resp.Results}, nil
		})
}
