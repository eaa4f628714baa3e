package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripagent/tripagent/internal/core"
)

func TestIdempotencyCache_Lifecycle(t *testing.T) {
	c := NewIdempotencyCache(time.Minute)

	cached, ok := c.Reserve(1, "k")
	require.True(t, ok)
	assert.Nil(t, cached)

	// held while running
	cached, ok = c.Reserve(1, "k")
	assert.False(t, ok)
	assert.Nil(t, cached)

	// other conversations are independent
	_, ok = c.Reserve(2, "k")
	assert.True(t, ok)

	want := &core.QueryResponse{Response: "done"}
	c.Complete(1, "k", want)
	cached, ok = c.Reserve(1, "k")
	assert.False(t, ok)
	assert.Same(t, want, cached)
}

func TestIdempotencyCache_Release(t *testing.T) {
	c := NewIdempotencyCache(time.Minute)

	_, ok := c.Reserve(1, "k")
	require.True(t, ok)
	c.Release(1, "k")

	_, ok = c.Reserve(1, "k")
	assert.True(t, ok)
}

func TestIdempotencyCache_Expiry(t *testing.T) {
	c := NewIdempotencyCache(20 * time.Millisecond)

	_, ok := c.Reserve(1, "k")
	require.True(t, ok)
	time.Sleep(40 * time.Millisecond)

	_, ok = c.Reserve(1, "k")
	assert.True(t, ok)
}
