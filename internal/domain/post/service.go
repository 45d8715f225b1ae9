package post

import (
	"context"
	"sort"
	"strings"

	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// Service provides business logic for post storage.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService constructs a post service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Get().With("component", "post_service")}
}

// Recent returns the latest posts of an author, newest first.
func (s *Service) Recent(ctx context.Context, authorKey string, limit int) ([]Post, error) {
	authorKey = strings.ToLower(strings.TrimSpace(authorKey))
	if authorKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "author is required")
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	posts, err := s.repo.Recent(ctx, authorKey, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "recent posts for %s", authorKey)
	}
	return posts, nil
}

// Exists reports whether a post is already stored.
func (s *Service) Exists(ctx context.Context, authorKey string, date int64) (bool, error) {
	return s.repo.Exists(ctx, authorKey, date)
}

// Save stores a single post.
func (s *Service) Save(ctx context.Context, authorKey string, p *Post) error {
	if p == nil || p.Date == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "post with a date is required")
	}
	return s.repo.Save(ctx, authorKey, p)
}

// NewPosts orders posts newest first and keeps those published after the
// newest one already stored. Scrapes return a timeline, so the first known
// post marks where the previous run stopped.
func (s *Service) NewPosts(ctx context.Context, authorKey string, posts []Post) ([]Post, error) {
	sorted := make([]Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	for i, p := range sorted {
		exists, err := s.repo.Exists(ctx, authorKey, p.Date)
		if err != nil {
			return nil, errors.Wrapf(err, "check post %d", p.Date)
		}
		if exists {
			return sorted[:i], nil
		}
	}
	return sorted, nil
}

// SaveNew stores the posts newer than anything already stored and returns
// how many were written.
func (s *Service) SaveNew(ctx context.Context, authorKey string, posts []Post) (int, error) {
	fresh, err := s.NewPosts(ctx, authorKey, posts)
	if err != nil {
		return 0, err
	}

	for i := range fresh {
		if err := s.repo.Save(ctx, authorKey, &fresh[i]); err != nil {
			return i, errors.Wrapf(err, "save post %d", fresh[i].Date)
		}
	}

	s.log.Infof("saved %d new posts for %s", len(fresh), authorKey)
	return len(fresh), nil
}
