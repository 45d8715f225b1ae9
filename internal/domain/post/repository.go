package post

import "context"

// Repository stores posts per author key
type Repository interface {
	Save(ctx context.Context, authorKey string, p *Post) error
	Exists(ctx context.Context, authorKey string, date int64) (bool, error)
	// Recent returns up to limit posts, newest first
	Recent(ctx context.Context, authorKey string, limit int) ([]Post, error)
}
