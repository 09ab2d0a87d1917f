// Package usage tallies completed actions per user per UTC calendar day,
// keyed by "<userId>-<YYYY-MM-DD>" in a flat mapping. It is independent of
// the quota tracker and the two are never reconciled: the quota counts
// attempted requests, this counter counts completed ones.
package usage

import (
	"fmt"
	"time"

	"github.com/lucaf1-15/lucai-backend/internal/store"
)

// dayFormat is the date part of the composite usage key.
const dayFormat = "2006-01-02"

// Counter tracks per-user daily usage in a file-backed mapping.
type Counter struct {
	kv    *store.KV
	nowFn func() time.Time
}

// NewCounter constructs a Counter. A nil clock falls back to time.Now.
func NewCounter(kv *store.KV, nowFn func() time.Time) *Counter {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Counter{kv: kv, nowFn: nowFn}
}

// TodayUsage returns the count stored for the user under today's key, or 0.
func (c *Counter) TodayUsage(userID string) int64 {
	return c.kv.Get(c.key(userID))
}

// Increment adds one to today's count for the user and returns the new value.
func (c *Counter) Increment(userID string) (int64, error) {
	return c.kv.Increment(c.key(userID))
}

// AllStats returns a snapshot of every stored key and count.
func (c *Counter) AllStats() map[string]int64 {
	return c.kv.All()
}

// key builds the composite usage key for the current UTC day.
func (c *Counter) key(userID string) string {
	return fmt.Sprintf("%s-%s", userID, c.nowFn().UTC().Format(dayFormat))
}
