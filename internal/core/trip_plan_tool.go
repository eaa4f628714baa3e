package core

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/tripagent/tripagent/internal/llm"
	"github.com/tripagent/tripagent/internal/store"
)

// TripPlanSaver persists the single plan of a conversation.
type TripPlanSaver interface {
	UpsertTripPlan(ctx context.Context, conversationID int64, plan store.TripDetails) (*store.UpsertResult, error)
}

// TripPlanResult is the reply of the showTripPlan tool.
type TripPlanResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	TripPlanID int64  `json:"tripPlanId,omitempty"`
	Error      string `json:"error,omitempty"`
}

type ShowTripPlanTool struct {
	plans TripPlanSaver
	log   zerolog.Logger
}

func NewShowTripPlanTool(plans TripPlanSaver, log zerolog.Logger) *ShowTripPlanTool {
	return &ShowTripPlanTool{plans: plans, log: log}
}

func (t *ShowTripPlanTool) Declaration() llm.ToolDeclaration {
	return llm.ToolDeclaration{
		Name:        "showTripPlan",
		Description: "Show a trip plan to the user, as the user interacts with the agent, you should show the trip plan to the user",
		Parameters:  llm.ReflectParameters(&store.TripDetails{}),
	}
}

// Execute creates or replaces the conversation's plan.
func (t *ShowTripPlanTool) Execute(ctx context.Context, conversationID int64, raw json.RawMessage) ToolResult {
	plan, err := decodeArgs[store.TripDetails]("showTripPlan", raw)
	if err != nil {
		return failure(err)
	}

	res, err := t.plans.UpsertTripPlan(ctx, conversationID, plan)
	if err != nil {
		t.log.Error().Err(err).Int64("conversationId", conversationID).Msg("Failed to save trip plan")
		return ToolResult{
			Output: TripPlanResult{Success: false, Message: "Failed to save trip plan", Error: err.Error()},
			Err:    err,
		}
	}

	msg := "Trip plan updated successfully"
	if res.Created {
		msg = "Trip plan saved successfully"
	}
	return ToolResult{Output: TripPlanResult{Success: true, Message: msg, TripPlanID: res.ID}}
}
