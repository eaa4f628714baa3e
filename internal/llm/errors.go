package llm

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tripagent/tripagent/internal/apperrors"
)

// wrapCallError classifies a failed provider call. Deadline expiry is kept
// distinct from other provider failures.
func wrapCallError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Timeout(op, err)
	}
	return apperrors.Provider(op, err)
}

// resultObject normalizes a tool result into a JSON object, wrapping
// non-object values under "result".
func resultObject(result any) map[string]any {
	raw, err := json.Marshal(result)
	if err != nil {
		return map[string]any{"result": err.Error()}
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return map[string]any{"result": string(raw)}
	}
	if obj, ok := decoded.(map[string]any); ok {
		return obj
	}
	return map[string]any{"result": decoded}
}

// resultText renders a tool result as message content.
func resultText(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err.Error()
	}
	return string(raw)
}

func argumentsObject(args json.RawMessage) map[string]any {
	out := map[string]any{}
	if len(args) == 0 {
		return out
	}
	if err := json.Unmarshal(args, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
