package redis

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/Verdenroz/buff-ai/internal/domain/post"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// PostRepository implements post.Repository using Redis.
// Keys are {authorKey}:{unix date} holding the JSON post, expiring after post.TTL.
type PostRepository struct {
	client *redis.Client
}

// NewPostRepository creates a new post repository
func NewPostRepository(client *redis.Client) *PostRepository {
	return &PostRepository{
		client: client,
	}
}

// Save stores a post with TTL
func (r *PostRepository) Save(ctx context.Context, authorKey string, p *post.Post) error {
	key := post.Key(authorKey, p.Date)

	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal post: key=%s", key)
	}

	if err := r.client.Set(ctx, key, data, post.TTL).Err(); err != nil {
		return errors.Wrapf(err, "failed to save post to redis: key=%s", key)
	}

	return nil
}

// Get retrieves one post
func (r *PostRepository) Get(ctx context.Context, authorKey string, date int64) (*post.Post, error) {
	key := post.Key(authorKey, date)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "post not found: key=%s", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get post from redis: key=%s", key)
	}

	var p post.Post
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal post: key=%s", key)
	}

	return &p, nil
}

// Exists checks if a post is stored
func (r *PostRepository) Exists(ctx context.Context, authorKey string, date int64) (bool, error) {
	key := post.Key(authorKey, date)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, errors.Wrapf(err, "failed to check post existence: key=%s", key)
	}

	return exists > 0, nil
}

// Recent returns up to limit posts for an author, newest first
func (r *PostRepository) Recent(ctx context.Context, authorKey string, limit int) ([]post.Post, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, authorKey+":*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to scan posts: author=%s", authorKey)
	}

	if len(keys) == 0 {
		return []post.Post{}, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load posts: author=%s", authorKey)
	}

	posts := make([]post.Post, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // expired between SCAN and MGET
		}

		var p post.Post
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal post: key=%s", keys[i])
		}
		posts = append(posts, p)
	}

	sort.Slice(posts, func(i, j int) bool { return posts[i].Date > posts[j].Date })
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	return posts, nil
}
