package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripagent/tripagent/internal/apperrors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePlan(destination string) TripDetails {
	return TripDetails{
		Destination: destination,
		StartDate:   "2025-06-15",
		EndDate:     "2025-06-17",
		Tags:        []string{"culture", "food"},
		Days: []DayPlan{
			{
				Title:          "Arrival",
				Date:           "2025-06-15",
				Accommodation:  &Accommodation{Name: "Hotel de Luxe", Address: "123 Champs-Élysées, Paris"},
				Transportation: &Transportation{Type: "Train", Details: "RER B from CDG"},
				Activities: []Activity{
					{Name: "Welcome Dinner", Type: ActivityMeal, Time: "7:00 PM", Location: "Le Petit Bistro"},
					{Name: "Seine walk", Type: ActivityOther},
				},
			},
			{
				Title: "Museums",
				Date:  "2025-06-16",
				Activities: []Activity{
					{Name: "Louvre Museum", Type: ActivityAttraction, Description: "Mona Lisa"},
				},
			},
		},
	}
}

func TestCreateAndGetConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateConversation(ctx)
	require.NoError(t, err)
	second, err := s.CreateConversation(ctx)
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	got, err := s.GetConversation(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	missing, err := s.GetConversation(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAppendAndListMessages_Ordered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx)
	require.NoError(t, err)

	require.NoError(t, s.AppendMessage(ctx, conv.ID, RoleUser, "Plan a trip to Paris", ""))
	require.NoError(t, s.AppendMessages(ctx, conv.ID, []NewMessage{
		{Role: RoleTool, Content: `[{"name":"Hotel de Luxe"}]`, Name: "searchHotels"},
		{Role: RoleAssistant, Content: "Here are some hotels."},
	}))

	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleTool, msgs[1].Role)
	require.NotNil(t, msgs[1].Name)
	assert.Equal(t, "searchHotels", *msgs[1].Name)
	assert.Nil(t, msgs[0].Name)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
	assert.Equal(t, "Here are some hotels.", *msgs[2].Content)

	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt), "messages out of order")
	}
}

func TestListMessages_EmptyConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx)
	require.NoError(t, err)

	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestAppendMessage_InvalidRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx)
	require.NoError(t, err)

	err = s.AppendMessage(ctx, conv.ID, Role("system"), "hi", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestAppendMessage_UnknownConversation(t *testing.T) {
	s := newTestStore(t)

	err := s.AppendMessage(context.Background(), 42, RoleUser, "hello", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
}

func TestUpsertTripPlan_SingleRowPerConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx)
	require.NoError(t, err)

	first, err := s.UpsertTripPlan(ctx, conv.ID, samplePlan("Paris"))
	require.NoError(t, err)
	assert.True(t, first.Created)

	updated := samplePlan("Tokyo")
	updated.Tags = []string{"anime"}
	for i := 0; i < 3; i++ {
		res, err := s.UpsertTripPlan(ctx, conv.ID, updated)
		require.NoError(t, err)
		assert.False(t, res.Created)
		assert.Equal(t, first.ID, res.ID)
	}

	plans, err := s.ListTripPlans(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Tokyo", plans[0].Destination)
	assert.Equal(t, []string{"anime"}, plans[0].Tags)
	assert.Equal(t, conv.ID, plans[0].ConversationID)
}

func TestUpsertTripPlan_ConcurrentSaves(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpsertTripPlan(ctx, conv.ID, samplePlan("Paris"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	plans, err := s.ListTripPlans(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestTripPlan_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx)
	require.NoError(t, err)

	want := samplePlan("Paris")
	_, err = s.UpsertTripPlan(ctx, conv.ID, want)
	require.NoError(t, err)

	plans, err := s.ListTripPlans(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, want, plans[0].TripDetails)
}

func TestListTripPlans_Empty(t *testing.T) {
	s := newTestStore(t)

	plans, err := s.ListTripPlans(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestWithDefaultParams(t *testing.T) {
	assert.Equal(t, "trip.db?"+defaultDSNParams, withDefaultParams("trip.db"))
	assert.Equal(t, "file:trip.db?mode=ro", withDefaultParams("file:trip.db?mode=ro"))
}
