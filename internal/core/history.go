package core

import (
	"encoding/json"

	"github.com/tripagent/tripagent/internal/llm"
	"github.com/tripagent/tripagent/internal/store"
)

// FormatHistory turns stored messages into the model prompt. Rows without a
// role or content are skipped; a malformed historical row must not block a
// new turn. Tool rows get their JSON result back, or the raw text if the
// content does not parse.
func FormatHistory(messages []store.Message) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "" || m.Content == nil || *m.Content == "" {
			continue
		}
		content := *m.Content

		switch m.Role {
		case store.RoleUser:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: content})
		case store.RoleAssistant:
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: content})
		case store.RoleTool:
			var name string
			if m.Name != nil {
				name = *m.Name
			}
			var result any
			if err := json.Unmarshal([]byte(content), &result); err != nil {
				result = content
			}
			out = append(out, llm.Message{Role: llm.RoleTool, Name: name, Result: result})
		}
	}
	return out
}
