package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripagent/tripagent/internal/apperrors"
	"github.com/tripagent/tripagent/internal/catalog"
	"github.com/tripagent/tripagent/internal/llm"
	"github.com/tripagent/tripagent/internal/metrics"
	"github.com/tripagent/tripagent/internal/store"
)

// Store is the persistence the trip agent needs.
type Store interface {
	TripPlanSaver
	CreateConversation(ctx context.Context) (*store.Conversation, error)
	GetConversation(ctx context.Context, id int64) (*store.Conversation, error)
	AppendMessage(ctx context.Context, conversationID int64, role store.Role, content string, name string) error
	AppendMessages(ctx context.Context, conversationID int64, msgs []store.NewMessage) error
	ListMessages(ctx context.Context, conversationID int64) ([]store.Message, error)
	ListTripPlans(ctx context.Context, conversationID int64) ([]store.TripPlan, error)
}

type Options struct {
	MaxSteps        int
	MaxOutputTokens int
	ModelTimeout    time.Duration
}

// QueryResponse is the reply to one user turn.
type QueryResponse struct {
	Response    string             `json:"response"`
	TripDetails *store.TripDetails `json:"tripDetails"`
}

type TripAgentService struct {
	db       Store
	provider llm.Provider
	tools    *ToolRegistry
	opts     Options
	log      zerolog.Logger
	tracer   trace.Tracer
}

// DefaultTools builds the search and plan tools over the given catalog and store.
func DefaultTools(c *catalog.Catalog, plans TripPlanSaver, log zerolog.Logger) *ToolRegistry {
	return NewToolRegistry(
		NewSearchDestinationsTool(c),
		NewSearchHotelsTool(c),
		NewSearchAttractionsTool(c),
		NewSearchRestaurantsTool(c),
		NewShowTripPlanTool(plans, log),
	)
}

func NewTripAgentService(db Store, provider llm.Provider, tools *ToolRegistry, opts Options, log zerolog.Logger) *TripAgentService {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 5
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = 1000
	}
	if opts.ModelTimeout <= 0 {
		opts.ModelTimeout = 60 * time.Second
	}
	return &TripAgentService{
		db:       db,
		provider: provider,
		tools:    tools,
		opts:     opts,
		log:      log,
		tracer:   otel.Tracer("github.com/tripagent/tripagent/internal/core"),
	}
}

func (s *TripAgentService) Tools() []llm.ToolDeclaration {
	return s.tools.Declarations()
}

func (s *TripAgentService) CreateConversation(ctx context.Context) (*store.Conversation, error) {
	return s.db.CreateConversation(ctx)
}

// GetMessages returns the stored log of a conversation. Unknown ids are a
// NotFound error.
func (s *TripAgentService) GetMessages(ctx context.Context, conversationID int64) ([]store.Message, error) {
	if err := s.requireConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.db.ListMessages(ctx, conversationID)
}

func (s *TripAgentService) GetTripPlans(ctx context.Context, conversationID int64) ([]store.TripPlan, error) {
	if err := s.requireConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.db.ListTripPlans(ctx, conversationID)
}

func (s *TripAgentService) requireConversation(ctx context.Context, conversationID int64) error {
	conv, err := s.db.GetConversation(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("failed to verify conversation: %w", err)
	}
	if conv == nil {
		return apperrors.NotFound("GetConversation", fmt.Sprintf("conversation %d not found", conversationID))
	}
	return nil
}

// ProcessQuery runs one user turn: store the query, let the model call tools
// for up to MaxSteps round trips, store the tool results and the reply, and
// extract any trip plan embedded in the reply.
//
// Errors are returned only for an empty query or an unknown conversation.
// Every other failure yields the apology reply with no trip details, and
// nothing but the user message is kept for the turn.
func (s *TripAgentService) ProcessQuery(ctx context.Context, conversationID int64, query string) (*QueryResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.Validation("ProcessQuery", "query must not be empty")
	}

	ctx, span := s.tracer.Start(ctx, "TripAgent.ProcessQuery",
		trace.WithAttributes(
			attribute.Int64("conversation.id", conversationID),
			attribute.String("llm.provider", s.provider.Name()),
		))
	defer span.End()

	start := time.Now()
	defer func() { metrics.TurnDuration.Observe(time.Since(start).Seconds()) }()

	log := s.log.With().Int64("conversationId", conversationID).Logger()

	conv, err := s.db.GetConversation(ctx, conversationID)
	if err != nil {
		return s.softFailure(span, log, 0, fmt.Errorf("failed to verify conversation: %w", err)), nil
	}
	if conv == nil {
		return nil, apperrors.NotFound("ProcessQuery", fmt.Sprintf("conversation %d not found", conversationID))
	}

	// 1. Ingest
	if err := s.db.AppendMessage(ctx, conversationID, store.RoleUser, query, ""); err != nil {
		return s.softFailure(span, log, 0, fmt.Errorf("failed to store user message: %w", err)), nil
	}

	// 2. Reconstruct
	stored, err := s.db.ListMessages(ctx, conversationID)
	if err != nil {
		return s.softFailure(span, log, 0, fmt.Errorf("failed to load history: %w", err)), nil
	}
	history := FormatHistory(stored)

	// 3-4. Generate and run tools
	text, pending, step, err := s.runLoop(ctx, log, conversationID, history)
	if err != nil {
		return s.softFailure(span, log, step, err), nil
	}
	if strings.TrimSpace(text) == "" {
		log.Warn().Int("step", step).Msg("Model finished without text, using fallback reply")
		text = emptyReplyFallback
	}

	// 5. Finalize
	pending = append(pending, store.NewMessage{Role: store.RoleAssistant, Content: text})
	if err := s.db.AppendMessages(ctx, conversationID, pending); err != nil {
		return s.softFailure(span, log, step, fmt.Errorf("failed to store turn: %w", err)), nil
	}

	// 6. Extract
	cleaned, plan, err := ExtractTripPlan(text)
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring malformed trip plan in reply")
	}

	metrics.TurnsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	span.SetAttributes(attribute.Int("agent.steps", step), attribute.Bool("agent.trip_details", plan != nil))
	log.Info().Int("steps", step).Int("toolMessages", len(pending)-1).Msg("Processed trip query")

	return &QueryResponse{Response: cleaned, TripDetails: plan}, nil
}

// runLoop drives the model until it answers without tool calls or the step
// budget is spent. Tool calls of the final step are still executed. Tool
// results are buffered and returned for the caller to persist.
func (s *TripAgentService) runLoop(ctx context.Context, log zerolog.Logger, conversationID int64, history []llm.Message) (string, []store.NewMessage, int, error) {
	decls := s.tools.Declarations()
	var pending []store.NewMessage

	for step := 1; ; step++ {
		resp, err := s.generate(ctx, llm.Request{
			System:          systemPrompt,
			Messages:        history,
			Tools:           decls,
			MaxOutputTokens: s.opts.MaxOutputTokens,
		})
		if err != nil {
			return "", nil, step, err
		}
		if len(resp.ToolCalls) == 0 {
			return resp.Text, pending, step, nil
		}

		history = append(history, llm.Message{Role: llm.RoleAssistant, Content: resp.Text, ToolCalls: resp.ToolCalls})
		for _, call := range resp.ToolCalls {
			result := s.tools.Execute(ctx, conversationID, call)
			status := metrics.StatusOK
			if result.Failed() {
				status = metrics.StatusFailed
				log.Warn().Err(result.Err).Int("step", step).Str("tool", call.Name).Msg("Tool call failed")
			}
			metrics.ToolCallsTotal.WithLabelValues(call.Name, status).Inc()

			content, err := json.Marshal(result.Output)
			if err != nil {
				return "", nil, step, fmt.Errorf("failed to encode %s result: %w", call.Name, err)
			}
			pending = append(pending, store.NewMessage{Role: store.RoleTool, Content: string(content), Name: call.Name})
			history = append(history, llm.Message{Role: llm.RoleTool, ToolCallID: call.ID, Name: call.Name, Result: result.Output})
		}

		if step >= s.opts.MaxSteps {
			log.Warn().Int("steps", step).Msg("Step budget exhausted")
			return resp.Text, pending, step, nil
		}
	}
}

func (s *TripAgentService) generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ModelTimeout)
	defer cancel()

	resp, err := s.provider.Generate(ctx, req)
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, apperrors.ErrTimeout):
		outcome = metrics.OutcomeTimeout
	case err != nil:
		outcome = metrics.OutcomeError
	}
	metrics.ProviderRequestsTotal.WithLabelValues(s.provider.Name(), outcome).Inc()
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, apperrors.Provider("Generate", errors.New("provider returned no response"))
	}
	return resp, nil
}

func (s *TripAgentService) softFailure(span trace.Span, log zerolog.Logger, step int, err error) *QueryResponse {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperrors.KindOf(err)))
	metrics.TurnsTotal.WithLabelValues(metrics.OutcomeSoftFailure).Inc()
	log.Error().Err(err).Int("step", step).Str("kind", string(apperrors.KindOf(err))).Msg("Error processing trip query")
	return &QueryResponse{Response: ApologyMessage}
}
