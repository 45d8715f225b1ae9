package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/internal/domain/post"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

func newTestStore(t *testing.T, endpoint string) *S3 {
	t.Helper()
	store, err := NewS3(context.Background(), config.StorageConfig{
		Bucket:     "ramhack",
		Region:     "us-east-2",
		Endpoint:   endpoint,
		AccessKey:  "AKIDEXAMPLE",
		SecretKey:  "secret",
		PresignTTL: time.Hour,
	})
	require.NoError(t, err)
	return store
}

func TestAudioKey(t *testing.T) {
	assert.Equal(t, "tts/trump/1743600000.mp3", AudioKey("trump", 1743600000))
}

func TestS3_UploadAudio(t *testing.T) {
	var gotPath, gotContentType, gotSSE, gotAuthor, gotDate string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotSSE = r.Header.Get("X-Amz-Server-Side-Encryption")
		gotAuthor = r.Header.Get("X-Amz-Meta-Author")
		gotDate = r.Header.Get("X-Amz-Meta-Date")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := newTestStore(t, server.URL)

	key, err := store.UploadAudio(context.Background(), "trump",
		post.Post{Author: "Donald J. Trump", Date: 1743600000}, []byte("ID3 fake mp3"))
	require.NoError(t, err)

	assert.Equal(t, "tts/trump/1743600000.mp3", key)
	assert.Equal(t, "/ramhack/tts/trump/1743600000.mp3", gotPath)
	assert.Equal(t, "audio/mpeg", gotContentType)
	assert.Equal(t, "AES256", gotSSE)
	assert.Equal(t, "Donald J. Trump", gotAuthor)
	assert.Equal(t, "1743600000", gotDate)
	assert.Contains(t, string(gotBody), "ID3 fake mp3")
}

func TestS3_UploadAudioRejectsEmpty(t *testing.T) {
	store := newTestStore(t, "http://127.0.0.1:1")
	_, err := store.UploadAudio(context.Background(), "trump", post.Post{Date: 1}, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestS3_PresignGet(t *testing.T) {
	store := newTestStore(t, "http://127.0.0.1:9000")

	raw, err := store.PresignGet(context.Background(), "tts/trump/1743600000.mp3")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/ramhack/tts/trump/1743600000.mp3", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	_, err = store.PresignGet(context.Background(), "")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
