// Package llm is the provider-neutral boundary to chat models with tool
// calling, plus the Gemini and OpenAI implementations.
package llm

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Role of a message sent to the model. System instructions travel in
// Request.System, not as a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of the prompt.
//
// Assistant messages may carry ToolCalls. Tool messages carry the Result of
// one call; ToolCallID is empty for results replayed from stored history.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
	Result     any
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolDeclaration describes a callable tool to the model.
type ToolDeclaration struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

type Request struct {
	System          string
	Messages        []Message
	Tools           []ToolDeclaration
	MaxOutputTokens int
}

// Response is the outcome of a single model round trip.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Provider performs one model round trip. Implementations return
// apperrors provider or timeout errors.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
	Close() error
}
