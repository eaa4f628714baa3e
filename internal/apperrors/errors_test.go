package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsByKind(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := fmt.Errorf("append user message: %w", Storage("AppendMessage", cause))

	assert.True(t, errors.Is(err, ErrStorage))
	assert.False(t, errors.Is(err, ErrProvider))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindStorage, KindOf(err))
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", Validation("AppendMessage", "invalid role \"system\""), "validation AppendMessage: invalid role \"system\""},
		{"storage", Storage("ListMessages", errors.New("no such table")), "storage ListMessages: no such table"},
		{"timeout", Timeout("Generate", context.DeadlineExceeded), "timeout Generate: model call timed out: context deadline exceeded"},
		{"no op", &Error{Kind: KindNotFound, Message: "conversation 3 not found"}, "not_found: conversation 3 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}
