package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// GeminiProvider implements ChatProvider on the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	log    *logger.Logger
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}

	return &GeminiProvider{
		client: client,
		log:    logger.Get().With("component", "ai_provider", "provider", ProviderNameGemini),
	}, nil
}

// Name returns provider name.
func (p *GeminiProvider) Name() ProviderName { return ProviderNameGemini }

// Chat sends a chat completion request.
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	contents, cfg, err := toGeminiRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "gemini generate content: %v", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, errors.Wrap(errors.ErrExternal, "gemini returned no candidates")
	}

	msg := Message{Role: RoleAssistant, Content: resp.Text()}
	for i, fc := range resp.FunctionCalls() {
		args, err := json.Marshal(fc.Args)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode arguments for %s", fc.Name)
		}

		id := fc.ID
		if id == "" {
			id = fmt.Sprintf("%s_%d", fc.Name, i)
		}
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{ID: id, Name: fc.Name, Arguments: string(args)})
	}

	out := &ChatResponse{
		ID:           resp.ResponseID,
		Model:        resp.ModelVersion,
		Message:      msg,
		FinishReason: convertGeminiFinishReason(resp.Candidates[0].FinishReason, len(msg.ToolCalls) > 0),
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return out, nil
}

// ChatStream streams content deltas.
func (p *GeminiProvider) ChatStream(ctx context.Context, req ChatRequest) iter.Seq2[StreamChunk, error] {
	return func(yield func(StreamChunk, error) bool) {
		contents, cfg, err := toGeminiRequest(req)
		if err != nil {
			yield(StreamChunk{}, err)
			return
		}

		for resp, err := range p.client.Models.GenerateContentStream(ctx, req.Model, contents, cfg) {
			if err != nil {
				yield(StreamChunk{}, errors.Wrapf(errors.ErrExternal, "gemini stream: %v", err))
				return
			}

			chunk := StreamChunk{Content: resp.Text()}
			if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
				chunk.FinishReason = convertGeminiFinishReason(resp.Candidates[0].FinishReason, false)
			}
			if resp.UsageMetadata != nil && chunk.FinishReason != "" {
				chunk.Usage = &Usage{
					PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
					CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
					TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
				}
			}

			if chunk.Content == "" && chunk.FinishReason == "" {
				continue
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

func toGeminiRequest(req ChatRequest) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	cfg := &genai.GenerateContentConfig{}

	var system []string
	contents := make([]*genai.Content, 0, len(req.Messages))

	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			content := &genai.Content{Role: string(genai.RoleModel)}
			if m.Content != "" {
				content.Parts = append(content.Parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args := map[string]any{}
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, nil, errors.Wrapf(errors.ErrInvalidInput, "tool call %s arguments: %v", tc.Name, err)
					}
				}
				content.Parts = append(content.Parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args},
				})
			}
			contents = append(contents, content)
		case RoleTool:
			contents = append(contents, &genai.Content{
				Role: string(genai.RoleUser),
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Name:     m.Name,
						Response: map[string]any{"result": m.Content},
					},
				}},
			})
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		cfg.Temperature = &t
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			decls = append(decls, toGeminiDeclaration(tool))
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	return contents, cfg, nil
}

func toGeminiDeclaration(tool ToolDefinition) *genai.FunctionDeclaration {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(tool.Parameters)),
	}
	for _, param := range tool.Parameters {
		schema.Properties[param.Name] = &genai.Schema{
			Type:        genai.TypeString,
			Description: param.Description,
		}
		if param.Required {
			schema.Required = append(schema.Required, param.Name)
		}
	}

	return &genai.FunctionDeclaration{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters:  schema,
	}
}

func convertGeminiFinishReason(reason genai.FinishReason, hasToolCalls bool) FinishReason {
	if hasToolCalls {
		return FinishReasonToolCalls
	}
	switch reason {
	case genai.FinishReasonStop:
		return FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return FinishReasonLength
	case "":
		return ""
	default:
		return FinishReasonError
	}
}
