package tools

import (
	"context"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/domain/post"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// DefaultPostAuthor is the author key of the scraped account
const DefaultPostAuthor = "trump"

// NewGetRecentPostsTool returns a tool that reads the latest stored social posts.
func NewGetRecentPostsTool(deps Deps) Tool {
	params := []ai.ToolParameter{{Name: "author", Description: "Author key, defaults to trump"}}

	return New(GetRecentPosts, "Get the most recent market-relevant social media posts by an influential author", params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasPosts() {
				return nil, errors.Wrap(errors.ErrUnavailable, "get_recent_posts: post store not configured")
			}

			author := StringArg(args, "author", DefaultPostAuthor)

			posts, err := deps.Posts.Recent(ctx, author, post.DefaultRecentLimit)
			if err != nil {
				return nil, errors.Wrap(err, "get_recent_posts")
			}
			return map[string]interface{}{"posts": posts}, nil
		})
}
