package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Verdenroz/buff-ai/internal/domain/post"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// maxPostsLimit caps the limit query parameter of /posts
const maxPostsLimit = 100

// PostReader lists stored posts. *post.Service implements it.
type PostReader interface {
	Recent(ctx context.Context, authorKey string, limit int) ([]post.Post, error)
}

// AudioLinker turns a blob key into a download URL. *storage.S3 implements it.
type AudioLinker interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

type audioResponse struct {
	AudioFile string `json:"audio_file"`
}

// PostsHandler serves stored posts and their narrations
type PostsHandler struct {
	posts PostReader
	audio AudioLinker
}

// NewPostsHandler creates the post endpoints. audio may be nil when blob
// storage is not configured.
func NewPostsHandler(posts PostReader, audio AudioLinker) *PostsHandler {
	return &PostsHandler{posts: posts, audio: audio}
}

// Register mounts the post routes
func (h *PostsHandler) Register(g *echo.Group) {
	g.GET("/posts/:author", h.handleRecent)
	g.GET("/tts", h.handleAudio)
}

func (h *PostsHandler) handleRecent(c echo.Context) error {
	limit := post.DefaultRecentLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxPostsLimit {
			return errors.NewValidationError("limit", "limit must be between 1 and 100", raw)
		}
		limit = n
	}

	posts, err := h.posts.Recent(c.Request().Context(), c.Param("author"), limit)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []post.Post{}
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *PostsHandler) handleAudio(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return errors.NewValidationError("key", "missing required query parameter 'key'", nil)
	}
	if h.audio == nil {
		return errors.Wrap(errors.ErrUnavailable, "audio storage is not configured")
	}

	url, err := h.audio.PresignGet(c.Request().Context(), key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, audioResponse{AudioFile: url})
}
