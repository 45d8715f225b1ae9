package tts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

func TestElevenLabs_Synthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "xi-key", r.Header.Get("xi-api-key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Hello markets", body["text"])
		assert.Equal(t, "eleven_flash_v2_5", body["model_id"])

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = io.WriteString(w, "ID3audio")
	}))
	defer server.Close()

	synth := NewElevenLabs(config.TTSConfig{
		APIKey:  "xi-key",
		BaseURL: server.URL,
		VoiceID: "voice-1",
		Model:   "eleven_flash_v2_5",
		Timeout: 5 * time.Second,
	})

	audio, err := synth.Synthesize(context.Background(), "Hello markets")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3audio"), audio)
}

func TestElevenLabs_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"invalid_api_key"}`)
	}))
	defer server.Close()

	tests := []struct {
		name string
		key  string
		text string
		want error
	}{
		{name: "empty text", key: "k", text: "  ", want: errors.ErrInvalidInput},
		{name: "no key", key: "", text: "hi", want: errors.ErrUnavailable},
		{name: "rejected", key: "k", text: "hi", want: errors.ErrExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synth := NewElevenLabs(config.TTSConfig{APIKey: tt.key, BaseURL: server.URL, VoiceID: "v", Timeout: time.Second})
			_, err := synth.Synthesize(context.Background(), tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}
