package core

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tripagent/tripagent/internal/apperrors"
	"github.com/tripagent/tripagent/internal/store"
)

const (
	planCreatedSentence = "I've created a trip plan for you."
	timelineHint        = "I've created a trip plan for you. You can see it in the timeline view."
)

var (
	fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	blankLines  = regexp.MustCompile(`\n\s*\n`)
)

// ExtractTripPlan pulls a structured plan out of the first fenced block of a
// reply and returns the reply with every fenced block removed. The plan is
// nil when there is no block, the JSON does not parse, or it lacks a
// destination or days; err then explains why for logging.
func ExtractTripPlan(text string) (cleaned string, plan *store.TripDetails, err error) {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		plan, err = parsePlan(m[1])
	}

	cleaned = fencedBlock.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, planCreatedSentence, timelineHint)
	cleaned = blankLines.ReplaceAllString(cleaned, "\n")
	return strings.TrimSpace(cleaned), plan, err
}

func parsePlan(body string) (*store.TripDetails, error) {
	var probe struct {
		Destination string          `json:"destination"`
		Days        json.RawMessage `json:"days"`
	}
	if err := json.Unmarshal([]byte(body), &probe); err != nil {
		return nil, apperrors.Extraction("ExtractTripPlan", err)
	}
	if probe.Destination == "" || len(probe.Days) == 0 || string(probe.Days) == "null" {
		return nil, nil
	}

	var plan store.TripDetails
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		return nil, apperrors.Extraction("ExtractTripPlan", err)
	}
	return &plan, nil
}
