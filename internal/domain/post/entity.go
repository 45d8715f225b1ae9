package post

import (
	"fmt"
	"time"
)

const (
	// TTL is how long a stored post stays readable
	TTL = 30 * 24 * time.Hour

	// DefaultRecentLimit caps Recent when the caller passes no limit
	DefaultRecentLimit = 10
)

// Post is one scraped social-media post
type Post struct {
	Author  string `json:"author"`
	Content string `json:"content"`
	Date    int64  `json:"date"`          // unix seconds
	TTS     string `json:"tts,omitempty"` // blob key of the narrated audio
}

// Time returns the publication time
func (p Post) Time() time.Time {
	return time.Unix(p.Date, 0).UTC()
}

// Key is the storage key of a post: {authorKey}:{date}
func Key(authorKey string, date int64) string {
	return fmt.Sprintf("%s:%d", authorKey, date)
}
