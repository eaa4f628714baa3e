package store

import (
	"fmt"
	"time"
)

// Role is the author of a message. It is a closed set.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleTool:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

type Conversation struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	Role           Role      `json:"role"`
	Content        *string   `json:"content"` // Nil for malformed tool rows
	Name           *string   `json:"name,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewMessage is a message waiting to be appended.
type NewMessage struct {
	Role    Role
	Content string
	Name    string
}

// ActivityType is the kind of a scheduled activity.
type ActivityType string

const (
	ActivityAttraction ActivityType = "attraction"
	ActivityMeal       ActivityType = "meal"
	ActivityEvent      ActivityType = "event"
	ActivityOther      ActivityType = "other"
)

type Accommodation struct {
	Name    string `json:"name" validate:"required" jsonschema_description:"Name of the accommodation"`
	Address string `json:"address" validate:"required" jsonschema_description:"Address of the accommodation"`
}

type Transportation struct {
	Type    string `json:"type" validate:"required" jsonschema_description:"Type of transportation"`
	Details string `json:"details" validate:"required" jsonschema_description:"Details about the transportation"`
}

type Activity struct {
	Name        string       `json:"name" validate:"required" jsonschema_description:"Name of the activity"`
	Type        ActivityType `json:"type" validate:"required,oneof=attraction meal event other" jsonschema:"enum=attraction,enum=meal,enum=event,enum=other" jsonschema_description:"Type of activity"`
	Time        string       `json:"time,omitempty" jsonschema_description:"Time of the activity"`
	Duration    string       `json:"duration,omitempty" jsonschema_description:"How long the activity takes"`
	Location    string       `json:"location,omitempty" jsonschema_description:"Location of the activity"`
	Description string       `json:"description,omitempty" jsonschema_description:"Description of the activity"`
}

type DayPlan struct {
	Title          string          `json:"title" validate:"required" jsonschema_description:"Title for this day"`
	Date           string          `json:"date" validate:"required" jsonschema_description:"Date for this day"`
	Accommodation  *Accommodation  `json:"accommodation,omitempty" validate:"omitempty"`
	Transportation *Transportation `json:"transportation,omitempty" validate:"omitempty"`
	Activities     []Activity      `json:"activities,omitempty" validate:"dive"`
}

// TripDetails is the structured itinerary shared by the save tool, the
// response extractor and the persisted plan.
type TripDetails struct {
	Destination string    `json:"destination" validate:"required" jsonschema_description:"The main destination of the trip"`
	StartDate   string    `json:"startDate" validate:"required" jsonschema_description:"The start date of the trip (YYYY-MM-DD)"`
	EndDate     string    `json:"endDate" validate:"required" jsonschema_description:"The end date of the trip (YYYY-MM-DD)"`
	Tags        []string  `json:"tags" validate:"required" jsonschema_description:"Tags describing the trip such as beach or family or adventure"`
	Days        []DayPlan `json:"days" validate:"required,dive"`
}

type TripPlan struct {
	ID             int64 `json:"id"`
	ConversationID int64 `json:"conversationId"`
	TripDetails
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpsertResult reports which branch UpsertTripPlan took.
type UpsertResult struct {
	ID      int64
	Created bool
}
