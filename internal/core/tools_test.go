package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripagent/tripagent/internal/apperrors"
	"github.com/tripagent/tripagent/internal/catalog"
	"github.com/tripagent/tripagent/internal/llm"
	"github.com/tripagent/tripagent/internal/store"
)

type mockPlanSaver struct {
	UpsertTripPlanFunc func(ctx context.Context, conversationID int64, plan store.TripDetails) (*store.UpsertResult, error)
}

func (m *mockPlanSaver) UpsertTripPlan(ctx context.Context, conversationID int64, plan store.TripDetails) (*store.UpsertResult, error) {
	return m.UpsertTripPlanFunc(ctx, conversationID, plan)
}

func newTestRegistry(t *testing.T, saver TripPlanSaver) *ToolRegistry {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return DefaultTools(c, saver, zerolog.Nop())
}

func call(name, args string) llm.ToolCall {
	return llm.ToolCall{ID: "call-1", Name: name, Arguments: json.RawMessage(args)}
}

func TestToolRegistry_Declarations(t *testing.T) {
	r := newTestRegistry(t, &mockPlanSaver{})
	names := make([]string, 0)
	for _, d := range r.Declarations() {
		names = append(names, d.Name)
		assert.NotEmpty(t, d.Description)
		require.NotNil(t, d.Parameters)
	}
	assert.Equal(t, []string{"searchDestinations", "searchHotels", "searchAttractions", "searchRestaurants", "showTripPlan"}, names)
}

func TestSearchTools(t *testing.T) {
	r := newTestRegistry(t, &mockPlanSaver{})
	ctx := context.Background()

	tests := []struct {
		name      string
		call      llm.ToolCall
		wantNames []string
		wantText  string
	}{
		{"destination by country", call("searchDestinations", `{"query":"japan"}`), []string{"Tokyo"}, ""},
		{"destination by name substring", call("searchDestinations", `{"query":"YORK"}`), []string{"New York City"}, ""},
		{"destination none", call("searchDestinations", `{"query":"Atlantis"}`), nil, NoDestinationsFound},
		{"hotels", call("searchHotels", `{"destination":"paris"}`), []string{"Hotel de Luxe", "Cozy Parisian Inn"}, ""},
		{"hotels upper case", call("searchHotels", `{"destination":"PARIS"}`), []string{"Hotel de Luxe", "Cozy Parisian Inn"}, ""},
		{"hotels inner substring", call("searchHotels", `{"destination":"ari"}`), []string{"Hotel de Luxe", "Cozy Parisian Inn"}, ""},
		{"hotels none", call("searchHotels", `{"destination":"Rome"}`), nil, NoHotelsFound},
		{"attractions", call("searchAttractions", `{"destination":"york"}`), []string{"Empire State Building", "Central Park"}, ""},
		{"attractions none", call("searchAttractions", `{"destination":"Berlin"}`), nil, NoAttractionsFound},
		{"restaurants by cuisine", call("searchRestaurants", `{"destination":"Tokyo","cuisine":"ramen"}`), []string{"Ramen House"}, ""},
		{"restaurants no cuisine filter", call("searchRestaurants", `{"destination":"Paris"}`), []string{"Le Petit Bistro", "Café de Paris"}, ""},
		{"restaurants cuisine miss", call("searchRestaurants", `{"destination":"Paris","cuisine":"Thai"}`), nil, NoRestaurantsMatch},
		{"restaurants destination miss short circuits", call("searchRestaurants", `{"destination":"Lima","cuisine":"French"}`), nil, NoRestaurantsFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Execute(ctx, 1, tt.call)
			require.False(t, res.Failed())

			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, res.Output)
				return
			}
			raw, err := json.Marshal(res.Output)
			require.NoError(t, err)
			var items []struct {
				Name string `json:"name"`
			}
			require.NoError(t, json.Unmarshal(raw, &items))
			got := make([]string, 0, len(items))
			for _, it := range items {
				got = append(got, it.Name)
			}
			assert.Equal(t, tt.wantNames, got)
		})
	}
}

func TestToolRegistry_UnknownTool(t *testing.T) {
	r := newTestRegistry(t, &mockPlanSaver{})
	res := r.Execute(context.Background(), 1, call("bookFlight", `{}`))
	require.True(t, res.Failed())
	assert.True(t, errors.Is(res.Err, apperrors.ErrValidation))
	assert.Contains(t, res.Output.(map[string]any)["error"], "bookFlight")
}

func TestToolRegistry_MalformedArguments(t *testing.T) {
	saver := &mockPlanSaver{
		UpsertTripPlanFunc: func(ctx context.Context, conversationID int64, plan store.TripDetails) (*store.UpsertResult, error) {
			t.Fatal("plan with missing fields must not be saved")
			return nil, nil
		},
	}
	r := newTestRegistry(t, saver)

	tests := []struct {
		name string
		call llm.ToolCall
	}{
		{"truncated json", call("searchHotels", `{"destination":`)},
		{"wrong type", call("searchHotels", `{"destination":42}`)},
		{"destinations without query", call("searchDestinations", `{}`)},
		{"hotels without destination", call("searchHotels", `{}`)},
		{"attractions with empty destination", call("searchAttractions", `{"destination":""}`)},
		{"restaurants with cuisine only", call("searchRestaurants", `{"cuisine":"French"}`)},
		{"plan with destination only", call("showTripPlan", `{"destination":"Paris"}`)},
		{"plan without dates", call("showTripPlan", `{"destination":"Paris","tags":[],"days":[]}`)},
		{"plan without tags", call("showTripPlan", `{"destination":"Paris","startDate":"2025-06-15","endDate":"2025-06-16","days":[]}`)},
		{"plan without days", call("showTripPlan", `{"destination":"Paris","startDate":"2025-06-15","endDate":"2025-06-16","tags":[]}`)},
		{"plan day without date", call("showTripPlan", `{"destination":"Paris","startDate":"2025-06-15","endDate":"2025-06-16","tags":[],"days":[{"title":"Arrival"}]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Execute(context.Background(), 1, tt.call)
			require.True(t, res.Failed())
			assert.True(t, errors.Is(res.Err, apperrors.ErrValidation))
			assert.Equal(t, false, res.Output.(map[string]any)["success"])
		})
	}
}

func TestShowTripPlan(t *testing.T) {
	var gotConv int64
	var gotPlan store.TripDetails
	created := true
	saver := &mockPlanSaver{
		UpsertTripPlanFunc: func(ctx context.Context, conversationID int64, plan store.TripDetails) (*store.UpsertResult, error) {
			gotConv, gotPlan = conversationID, plan
			return &store.UpsertResult{ID: 7, Created: created}, nil
		},
	}
	r := newTestRegistry(t, saver)
	args := `{"destination":"Paris","startDate":"2025-06-15","endDate":"2025-06-17","tags":["food"],"days":[{"title":"Arrival","date":"2025-06-15","activities":[{"name":"Dinner","type":"meal"}]}]}`

	res := r.Execute(context.Background(), 42, call("showTripPlan", args))
	require.False(t, res.Failed())
	assert.Equal(t, TripPlanResult{Success: true, Message: "Trip plan saved successfully", TripPlanID: 7}, res.Output)
	assert.Equal(t, int64(42), gotConv)
	assert.Equal(t, "Paris", gotPlan.Destination)
	assert.Equal(t, store.ActivityMeal, gotPlan.Days[0].Activities[0].Type)

	created = false
	res = r.Execute(context.Background(), 42, call("showTripPlan", args))
	assert.Equal(t, "Trip plan updated successfully", res.Output.(TripPlanResult).Message)
}

func TestShowTripPlan_InvalidPlan(t *testing.T) {
	saver := &mockPlanSaver{
		UpsertTripPlanFunc: func(ctx context.Context, conversationID int64, plan store.TripDetails) (*store.UpsertResult, error) {
			t.Fatal("invalid plan must not be saved")
			return nil, nil
		},
	}
	r := newTestRegistry(t, saver)

	res := r.Execute(context.Background(), 1, call("showTripPlan", `{"destination":"","startDate":"2025-06-15","endDate":"2025-06-16","tags":[],"days":[]}`))
	assert.True(t, res.Failed())

	res = r.Execute(context.Background(), 1, call("showTripPlan", `{"destination":"Paris","startDate":"2025-06-15","endDate":"2025-06-16","tags":[],"days":[{"title":"x","date":"2025-06-15","activities":[{"name":"y","type":"party"}]}]}`))
	assert.True(t, res.Failed())
}

func TestShowTripPlan_StorageFailure(t *testing.T) {
	saver := &mockPlanSaver{
		UpsertTripPlanFunc: func(ctx context.Context, conversationID int64, plan store.TripDetails) (*store.UpsertResult, error) {
			return nil, apperrors.Storage("UpsertTripPlan", errors.New("disk full"))
		},
	}
	r := newTestRegistry(t, saver)

	res := r.Execute(context.Background(), 1, call("showTripPlan", `{"destination":"Paris","startDate":"2025-06-15","endDate":"2025-06-16","tags":[],"days":[]}`))
	require.True(t, res.Failed())
	out := res.Output.(TripPlanResult)
	assert.False(t, out.Success)
	assert.Equal(t, "Failed to save trip plan", out.Message)
	assert.Contains(t, out.Error, "disk full")
}
