package api

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tripagent/tripagent/internal/core"
)

const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	IdempotentReplayHeader = "Idempotent-Replayed"
)

// inFlight marks a key whose turn is still running.
type inFlight struct{}

// IdempotencyCache remembers query responses per conversation and client key
// so a retried request does not run the turn twice. A key is claimed before
// the turn starts; a concurrent duplicate sees the claim and is turned away.
type IdempotencyCache struct {
	c *cache.Cache
}

func NewIdempotencyCache(ttl time.Duration) *IdempotencyCache {
	return &IdempotencyCache{c: cache.New(ttl, 2*ttl)}
}

func cacheKey(conversationID int64, key string) string {
	return fmt.Sprintf("%d:%s", conversationID, key)
}

// Reserve claims key for a new turn and reports true on success. When the
// key is already taken it returns the stored reply, or nil while the first
// request is still running.
func (i *IdempotencyCache) Reserve(conversationID int64, key string) (*core.QueryResponse, bool) {
	ck := cacheKey(conversationID, key)
	if err := i.c.Add(ck, inFlight{}, cache.DefaultExpiration); err == nil {
		return nil, true
	}
	v, found := i.c.Get(ck)
	if !found {
		// expired between Add and Get; claim it again
		return nil, i.c.Add(ck, inFlight{}, cache.DefaultExpiration) == nil
	}
	resp, _ := v.(*core.QueryResponse)
	return resp, false
}

// Complete stores the reply for a reserved key.
func (i *IdempotencyCache) Complete(conversationID int64, key string, resp *core.QueryResponse) {
	i.c.SetDefault(cacheKey(conversationID, key), resp)
}

// Release drops a reservation so the request can be retried with the same key.
func (i *IdempotencyCache) Release(conversationID int64, key string) {
	i.c.Delete(cacheKey(conversationID, key))
}
