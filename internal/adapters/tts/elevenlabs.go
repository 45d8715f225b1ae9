package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// ElevenLabs synthesizes speech through the ElevenLabs text-to-speech API
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	voiceID    string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewElevenLabs creates a speech synthesizer
func NewElevenLabs(cfg config.TTSConfig) *ElevenLabs {
	return &ElevenLabs{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		voiceID:    cfg.VoiceID,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.Get().With("component", "elevenlabs"),
	}
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize returns MP3 audio of text read by the configured voice
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "text is empty")
	}
	if e.apiKey == "" {
		return nil, errors.Wrap(errors.ErrUnavailable, "ELEVENLABS_API_KEY is not configured")
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, ModelID: e.model})
	if err != nil {
		return nil, errors.Wrap(err, "encode tts request")
	}

	endpoint := e.baseURL + "/v1/text-to-speech/" + url.PathEscape(e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create tts request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "elevenlabs: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, errors.Wrapf(errors.ErrExternal, "elevenlabs returned status %d: %s", resp.StatusCode, excerpt)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read tts audio")
	}

	e.log.Debugf("synthesized %d chars into %s", len(text), humanize.Bytes(uint64(len(audio))))
	return audio, nil
}
