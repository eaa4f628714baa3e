package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/tripagent/tripagent/internal/apperrors"
	"github.com/tripagent/tripagent/internal/auth"
	"github.com/tripagent/tripagent/internal/core"
	"github.com/tripagent/tripagent/internal/llm"
	"github.com/tripagent/tripagent/internal/metrics"
	"github.com/tripagent/tripagent/internal/store"
)

// TripAgent is the service behind the HTTP API.
type TripAgent interface {
	CreateConversation(ctx context.Context) (*store.Conversation, error)
	GetMessages(ctx context.Context, conversationID int64) ([]store.Message, error)
	GetTripPlans(ctx context.Context, conversationID int64) ([]store.TripPlan, error)
	ProcessQuery(ctx context.Context, conversationID int64, query string) (*core.QueryResponse, error)
	Tools() []llm.ToolDeclaration
}

type APIHandler struct {
	agent       TripAgent
	idempotency *IdempotencyCache
	jwtSecret   string
	validate    *validator.Validate
	log         zerolog.Logger
}

func NewAPIHandler(agent TripAgent, idempotency *IdempotencyCache, jwtSecret string, log zerolog.Logger) *APIHandler {
	return &APIHandler{
		agent:       agent,
		idempotency: idempotency,
		jwtSecret:   jwtSecret,
		validate:    validator.New(),
		log:         log,
	}
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		subject, err := auth.ValidateJWT(h.jwtSecret, tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		// Tag the request logger so access and error lines name the caller.
		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("subject", subject)
		})
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps an apperrors kind onto a status code. Internal
// details stay in the log.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		http.Error(w, "Conversation not found", http.StatusNotFound)
	case apperrors.KindValidation:
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Message != "" {
			http.Error(w, appErr.Message, http.StatusBadRequest)
			return
		}
		http.Error(w, "Invalid request", http.StatusBadRequest)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func conversationID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "conversationID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	conv, err := h.agent.CreateConversation(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to create conversation")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *APIHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(r)
	if !ok {
		http.Error(w, "Invalid conversation id", http.StatusBadRequest)
		return
	}

	messages, err := h.agent.GetMessages(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to list messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type ProcessQueryRequest struct {
	Query string `json:"query" validate:"required"`
}

func (h *APIHandler) ProcessQueryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(r)
	if !ok {
		http.Error(w, "Invalid conversation id", http.StatusBadRequest)
		return
	}

	var req ProcessQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Query cannot be empty", http.StatusBadRequest)
		return
	}

	key := r.Header.Get(IdempotencyKeyHeader)
	if key != "" {
		cached, reserved := h.idempotency.Reserve(id, key)
		if !reserved {
			if cached == nil {
				http.Error(w, "A request with this Idempotency-Key is already in progress", http.StatusConflict)
				return
			}
			metrics.IdempotentReplaysTotal.Inc()
			w.Header().Set(IdempotentReplayHeader, "true")
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	resp, err := h.agent.ProcessQuery(r.Context(), id, req.Query)
	if key != "" {
		if err != nil || resp.Response == core.ApologyMessage {
			h.idempotency.Release(id, key)
		} else {
			h.idempotency.Complete(id, key, resp)
		}
	}
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to process query")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) ListTripPlansHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(r)
	if !ok {
		http.Error(w, "Invalid conversation id", http.StatusBadRequest)
		return
	}

	plans, err := h.agent.GetTripPlans(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to list trip plans")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *APIHandler) TripPlanCalendarHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(r)
	if !ok {
		http.Error(w, "Invalid conversation id", http.StatusBadRequest)
		return
	}

	plans, err := h.agent.GetTripPlans(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to export trip plan")
		return
	}
	if len(plans) == 0 {
		http.Error(w, "No trip plan for this conversation", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trip-plan-`+strconv.FormatInt(id, 10)+`.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(core.TripPlanCalendar(plans[0])))
}

func (h *APIHandler) ListToolsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.agent.Tools())
}

func (h *APIHandler) SampleTripPlanHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.SampleTripPlan())
}
