package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripagent/tripagent/internal/apperrors"
)

func TestExtractTripPlan(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantText    string
		wantDest    string
		wantErrKind apperrors.Kind
	}{
		{
			name:     "plain text untouched",
			text:     "  Where would you like to go?  ",
			wantText: "Where would you like to go?",
		},
		{
			name:     "valid plan extracted",
			text:     "Here is your plan.\n\n```json\n{\"destination\":\"Paris\",\"days\":[{\"title\":\"Arrival\",\"date\":\"2025-06-15\"}]}\n```\n\nAnything else?",
			wantText: "Here is your plan.\nAnything else?",
			wantDest: "Paris",
		},
		{
			name:     "untagged fence accepted",
			text:     "Plan:\n```\n{\"destination\":\"Tokyo\",\"days\":[]}\n```",
			wantText: "Plan:",
			wantDest: "Tokyo",
		},
		{
			name:     "missing days rejected",
			text:     "```json\n{\"destination\":\"Paris\"}\n```\nOk",
			wantText: "Ok",
		},
		{
			name:     "null days rejected",
			text:     "```json\n{\"destination\":\"Paris\",\"days\":null}\n```\nOk",
			wantText: "Ok",
		},
		{
			name:     "empty destination rejected",
			text:     "```json\n{\"destination\":\"\",\"days\":[]}\n```\nOk",
			wantText: "Ok",
		},
		{
			name:        "malformed json logged not returned",
			text:        "Oops\n```json\n{\"destination\": \"Paris\",\n```",
			wantText:    "Oops",
			wantErrKind: apperrors.KindExtraction,
		},
		{
			name:     "created sentence gets timeline hint",
			text:     "I've created a trip plan for you.\n\n\nWhat's your budget?",
			wantText: "I've created a trip plan for you. You can see it in the timeline view.\nWhat's your budget?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, plan, err := ExtractTripPlan(tt.text)
			assert.Equal(t, tt.wantText, cleaned)
			if tt.wantDest == "" {
				assert.Nil(t, plan)
			} else {
				require.NotNil(t, plan)
				assert.Equal(t, tt.wantDest, plan.Destination)
			}
			if tt.wantErrKind == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, apperrors.ErrExtraction))
			}
		})
	}
}

func TestExtractTripPlan_OnlyFirstBlockParsed(t *testing.T) {
	text := "```json\n{\"destination\":\"Paris\",\"days\":[]}\n```\nand\n```json\n{\"destination\":\"Rome\",\"days\":[]}\n```"
	cleaned, plan, err := ExtractTripPlan(text)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "Paris", plan.Destination)
	assert.Equal(t, "and", cleaned)
}
