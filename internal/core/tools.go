package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/tripagent/tripagent/internal/apperrors"
	"github.com/tripagent/tripagent/internal/llm"
)

// ToolResult is what a tool hands back to the model. Output is always
// usable by the model; Err is set when the call failed.
type ToolResult struct {
	Output any
	Err    error
}

func (r ToolResult) Failed() bool { return r.Err != nil }

// Tool is a named callable exposed to the model. The conversation id is
// passed on every call; tools keep no per-conversation state.
type Tool interface {
	Declaration() llm.ToolDeclaration
	Execute(ctx context.Context, conversationID int64, args json.RawMessage) ToolResult
}

// ToolRegistry is the fixed tool table offered to the model.
type ToolRegistry struct {
	tools map[string]Tool
	order []string
}

func NewToolRegistry(tools ...Tool) *ToolRegistry {
	r := &ToolRegistry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Declaration().Name
		if _, dup := r.tools[name]; !dup {
			r.order = append(r.order, name)
		}
		r.tools[name] = t
	}
	return r
}

// Declarations lists the tools in registration order.
func (r *ToolRegistry) Declarations() []llm.ToolDeclaration {
	return lo.Map(r.order, func(name string, _ int) llm.ToolDeclaration {
		return r.tools[name].Declaration()
	})
}

// Execute runs the tool named by call. Unknown tools are reported as a
// failed result rather than an error so the loop can carry on.
func (r *ToolRegistry) Execute(ctx context.Context, conversationID int64, call llm.ToolCall) ToolResult {
	t, ok := r.tools[call.Name]
	if !ok {
		return failure(apperrors.Validation("ToolRegistry.Execute", fmt.Sprintf("unknown tool %q", call.Name)))
	}
	return t.Execute(ctx, conversationID, call.Arguments)
}

func failure(err error) ToolResult {
	return ToolResult{
		Output: map[string]any{"success": false, "error": err.Error()},
		Err:    err,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeArgs unmarshals and validates tool arguments.
func decodeArgs[T any](tool string, raw json.RawMessage) (T, error) {
	var args T
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, apperrors.Validation(tool, fmt.Sprintf("malformed arguments: %v", err))
	}
	if err := validate.Struct(args); err != nil {
		return args, apperrors.Validation(tool, fmt.Sprintf("invalid arguments: %v", err))
	}
	return args, nil
}
