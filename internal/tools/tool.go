package tools

import (
	"context"
	"strings"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// Tool represents a callable capability exposed to agents.
type Tool interface {
	// Name returns the unique tool identifier.
	Name() string
	// Description returns a short human-readable summary.
	Description() string
	// Parameters lists the string arguments the model may pass.
	Parameters() []ai.ToolParameter
	// Execute performs the tool's action. The result is JSON-encoded for the model.
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// FunctionTool is a simple Tool implementation backed by a handler function.
type FunctionTool struct {
	name        string
	description string
	params      []ai.ToolParameter
	handler     HandlerFunc
}

// New creates a new function-backed Tool.
func New(name, description string, params []ai.ToolParameter, handler HandlerFunc) Tool {
	return &FunctionTool{
		name:        name,
		description: description,
		params:      params,
		handler:     handler,
	}
}

// Name returns the tool identifier.
func (t *FunctionTool) Name() string { return t.name }

// Description returns a human description of the tool.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the declared arguments.
func (t *FunctionTool) Parameters() []ai.ToolParameter { return t.params }

// Execute runs the underlying handler.
func (t *FunctionTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if t.handler == nil {
		return nil, errors.Newf("tool %s handler is not defined", t.name)
	}

	return t.handler(ctx, args)
}

// Definition describes a tool to the model
func Definition(t Tool) ai.ToolDefinition {
	return ai.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// StringArg reads a trimmed string argument, falling back to def when absent
func StringArg(args map[string]interface{}, name, def string) string {
	v, ok := args[name].(string)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

// RequiredStringArg reads a string argument that must be present
func RequiredStringArg(args map[string]interface{}, name string) (string, error) {
	v := StringArg(args, name, "")
	if v == "" {
		return "", errors.Wrapf(errors.ErrInvalidInput, "argument %q is required", name)
	}
	return v, nil
}
