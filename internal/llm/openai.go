package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"github.com/tripagent/tripagent/internal/apperrors"
)

const defaultOpenAIModel = "gpt-4o"

type OpenAIProvider struct {
	client openai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAIProvider builds a chat-completions client. Extra request options
// are passed through to the SDK (base URL, retries).
func NewOpenAIProvider(apiKey, model string, log zerolog.Logger, opts ...option.RequestOption) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
		log:    log,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Close() error { return nil }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, apperrors.Validation("openai.Generate", "prompt history is empty")
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: toOpenAIMessages(req.System, req.Messages),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	for _, t := range req.Tools {
		schema, err := schemaMap(t.Parameters)
		if err != nil {
			return nil, apperrors.Provider("openai.Generate", fmt.Errorf("tool %s schema: %w", t.Name, err))
		}
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(schema),
			},
		})
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapCallError(ctx, "openai.ChatCompletion", err)
	}
	if len(completion.Choices) == 0 {
		p.log.Warn().Str("model", p.model).Msg("completion returned no choices")
		return &Response{}, nil
	}

	msg := completion.Choices[0].Message
	out := &Response{Text: msg.Content}
	for _, call := range msg.ToolCalls {
		args := call.Function.Arguments
		if args == "" {
			args = "{}"
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: []byte(args),
		})
	}
	return out, nil
}

// toOpenAIMessages converts the neutral prompt. Stored tool rows carry no
// call id, so each gets a synthetic assistant call that it answers.
func toOpenAIMessages(system string, msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}

	replayed := 0
	for _, m := range msgs {
		switch m.Role {
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			calls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(m.ToolCalls))
			for _, c := range m.ToolCalls {
				args := string(c.Arguments)
				if args == "" {
					args = "{}"
				}
				calls = append(calls, openai.ChatCompletionMessageToolCallParam{
					ID: c.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      c.Name,
						Arguments: args,
					},
				})
			}
			out = append(out, assistantToolCalls(m.Content, calls))
		case RoleTool:
			id := m.ToolCallID
			if id == "" {
				replayed++
				id = fmt.Sprintf("history_%d", replayed)
				out = append(out, assistantToolCalls("", []openai.ChatCompletionMessageToolCallParam{{
					ID: id,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      m.Name,
						Arguments: "{}",
					},
				}}))
			}
			out = append(out, openai.ToolMessage(resultText(m.Result), id))
		}
	}
	return out
}

func assistantToolCalls(text string, calls []openai.ChatCompletionMessageToolCallParam) openai.ChatCompletionMessageParamUnion {
	msg := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
	if text != "" {
		msg.Content.OfString = openai.String(text)
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &msg}
}
