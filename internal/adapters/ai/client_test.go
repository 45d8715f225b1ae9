package ai

import (
	"context"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// fakeProvider replays scripted responses and records requests
type fakeProvider struct {
	mu        sync.Mutex
	responses []fakeResult
	chunks    [][]fakeChunk
	requests  []ChatRequest
}

type fakeResult struct {
	resp *ChatResponse
	err  error
}

type fakeChunk struct {
	text string
	err  error
}

func (f *fakeProvider) Name() ProviderName { return ProviderNameGroq }

func (f *fakeProvider) Chat(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if len(f.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next.resp, next.err
}

func (f *fakeProvider) ChatStream(_ context.Context, req ChatRequest) iter.Seq2[StreamChunk, error] {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	var script []fakeChunk
	if len(f.chunks) > 0 {
		script = f.chunks[0]
		f.chunks = f.chunks[1:]
	}
	f.mu.Unlock()

	return func(yield func(StreamChunk, error) bool) {
		for _, c := range script {
			if c.err != nil {
				yield(StreamChunk{}, c.err)
				return
			}
			if !yield(StreamChunk{Content: c.text}, nil) {
				return
			}
		}
	}
}

func text(s string) fakeResult {
	return fakeResult{resp: &ChatResponse{Message: Message{Role: RoleAssistant, Content: s}}}
}

func TestClient_Generate(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResult{text("  Hello there \n")}}
	client := NewClient(provider, "")

	out, err := client.Generate(context.Background(), "be brief", "hi")
	require.NoError(t, err)
	assert.Equal(t, "  Hello there \n", out, "model output is returned verbatim")

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, DefaultGroqModel, req.Model)
	assert.Equal(t, []Message{SystemMessage("be brief"), UserMessage("hi")}, req.Messages)
	assert.False(t, req.JSONMode)
}

func TestClient_GenerateJSON_AppendsSchema(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResult{text(`{"ok":true}`)}}
	client := NewClient(provider, "m")

	out, err := client.GenerateJSON(context.Background(), "route", "q", map[string]interface{}{"type": "object"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	req := provider.requests[0]
	assert.True(t, req.JSONMode)
	assert.Contains(t, req.Messages[0].Content, "route\nThe JSON object must use the schema: {")
	assert.Contains(t, req.Messages[0].Content, `"type": "object"`)
}

func TestClient_RetriesTransientErrors(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResult{
		{err: errors.Wrap(errors.ErrExternal, "503")},
		text("recovered"),
	}}
	client := NewClient(provider, "m", WithRetries(2, time.Millisecond))

	out, err := client.Generate(context.Background(), "s", "p")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Len(t, provider.requests, 2)
}

func TestClient_DoesNotRetryInvalidInput(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResult{
		{err: errors.Wrap(errors.ErrInvalidInput, "bad tool schema")},
		text("never"),
	}}
	client := NewClient(provider, "m", WithRetries(3, time.Millisecond))

	_, err := client.Generate(context.Background(), "s", "p")
	require.Error(t, err)
	assert.Len(t, provider.requests, 1)
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResult{
		{err: errors.Wrap(errors.ErrExternal, "1")},
		{err: errors.Wrap(errors.ErrExternal, "2")},
		{err: errors.Wrap(errors.ErrExternal, "3")},
	}}
	client := NewClient(provider, "m", WithRetries(1, time.Millisecond))

	_, err := client.Generate(context.Background(), "s", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2")
	assert.Len(t, provider.requests, 2)
}

func TestClient_Stream(t *testing.T) {
	provider := &fakeProvider{chunks: [][]fakeChunk{{{text: "Hel"}, {text: ""}, {text: "lo"}}}}
	client := NewClient(provider, "m")

	var got []string
	for chunk, err := range client.Stream(context.Background(), "s", "p") {
		require.NoError(t, err)
		got = append(got, chunk)
	}
	assert.Equal(t, []string{"Hel", "lo"}, got)
}

func TestClient_GenerateMatchesJoinedStream(t *testing.T) {
	answer := "\n## NVDA\nBuy on dips.\n"
	provider := &fakeProvider{
		responses: []fakeResult{text(answer)},
		chunks:    [][]fakeChunk{{{text: "\n## NVDA\n"}, {text: "Buy on dips.\n"}}},
	}
	client := NewClient(provider, "m")
	ctx := context.Background()

	buffered, err := client.Generate(ctx, "s", "p")
	require.NoError(t, err)

	var streamed strings.Builder
	for chunk, err := range client.Stream(ctx, "s", "p") {
		require.NoError(t, err)
		streamed.WriteString(chunk)
	}

	assert.Equal(t, answer, buffered)
	assert.Equal(t, buffered, streamed.String())
}

func TestClient_StreamRetriesBeforeFirstChunk(t *testing.T) {
	provider := &fakeProvider{chunks: [][]fakeChunk{
		{{err: errors.Wrap(errors.ErrExternal, "connect")}},
		{{text: "ok"}},
	}}
	client := NewClient(provider, "m", WithRetries(1, time.Millisecond))

	var got []string
	for chunk, err := range client.Stream(context.Background(), "s", "p") {
		require.NoError(t, err)
		got = append(got, chunk)
	}
	assert.Equal(t, []string{"ok"}, got)
}

func TestClient_StreamErrorAfterChunkEndsSequence(t *testing.T) {
	provider := &fakeProvider{chunks: [][]fakeChunk{
		{{text: "partial"}, {err: errors.Wrap(errors.ErrExternal, "reset")}},
		{{text: "unused"}},
	}}
	client := NewClient(provider, "m", WithRetries(3, time.Millisecond))

	var got []string
	var streamErr error
	for chunk, err := range client.Stream(context.Background(), "s", "p") {
		if err != nil {
			streamErr = err
			break
		}
		got = append(got, chunk)
	}

	assert.Equal(t, []string{"partial"}, got)
	require.Error(t, streamErr)
	assert.True(t, errors.Is(streamErr, errors.ErrExternal))
}

func TestClient_StreamStopsWhenConsumerBreaks(t *testing.T) {
	provider := &fakeProvider{chunks: [][]fakeChunk{{{text: "a"}, {text: "b"}, {text: "c"}}}}
	client := NewClient(provider, "m")

	var got []string
	for chunk, err := range client.Stream(context.Background(), "s", "p") {
		require.NoError(t, err)
		got = append(got, chunk)
		if len(got) == 1 {
			break
		}
	}
	assert.Equal(t, []string{"a"}, got)
}
