// Package quota enforces the per-user daily request limit using the
// requestCount/lastRequestDate fields of the user record. A stored count
// from a prior calendar day is treated as 0 without being rewritten until
// the next increment (lazy day rollover).
package quota

import (
	"errors"
	"fmt"
	"time"

	"github.com/lucaf1-15/lucai-backend/internal/models"
	"github.com/lucaf1-15/lucai-backend/internal/store"
)

// DefaultDailyLimit is the number of requests a standard user may make per
// UTC calendar day.
const DefaultDailyLimit = 20

// ErrUserNotFound indicates a quota operation targeted an unknown user.
var ErrUserNotFound = errors.New("quota: user not found")

// LimitError reports a rejected request along with the observed count.
type LimitError struct {
	Current int
	Limit   int
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("quota: daily limit reached (%d/%d)", e.Current, e.Limit)
}

// Tracker checks and records per-user daily request counts.
//
// Check and RecordRequest are deliberately separate operations; two
// concurrent callers can both pass the check before either increment lands.
// That check-then-increment race is inherited from the file-backed design.
type Tracker struct {
	users *store.Collection[models.User]
	limit int
	nowFn func() time.Time
}

// NewTracker constructs a Tracker. A non-positive limit falls back to
// DefaultDailyLimit and a nil clock falls back to time.Now.
func NewTracker(users *store.Collection[models.User], limit int, nowFn func() time.Time) *Tracker {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Tracker{users: users, limit: limit, nowFn: nowFn}
}

// Limit returns the configured daily limit for standard users.
func (t *Tracker) Limit() int { return t.limit }

// EffectiveCount returns the request count valid for the current UTC day.
// An unknown user and a count recorded on a previous day both yield 0.
func (t *Tracker) EffectiveCount(userID string) int {
	user, errFind := t.users.FindByID(userID)
	if errFind != nil {
		return 0
	}
	return t.effectiveCount(user)
}

// Check rejects the user when the effective count has reached the daily
// limit. Admin users are never subject to the limit.
func (t *Tracker) Check(user models.User) error {
	if user.IsAdmin() {
		return nil
	}
	current := t.effectiveCount(user)
	if current >= t.limit {
		return &LimitError{Current: current, Limit: t.limit}
	}
	return nil
}

// RecordRequest counts one request against the user for the current UTC day:
// same-day requests increment the stored count, the first request of a new
// day resets it to 1. Admin users are never counted.
func (t *Tracker) RecordRequest(userID string) error {
	user, errFind := t.users.FindByID(userID)
	if errFind != nil {
		return ErrUserNotFound
	}
	if user.IsAdmin() {
		return nil
	}

	now := t.nowFn().UTC()
	count := 1
	if user.LastRequestDate != nil && sameUTCDay(*user.LastRequestDate, now) {
		count = user.RequestCount + 1
	}

	_, errUpdate := t.users.Update(userID, func(u models.User) models.User {
		u.RequestCount = count
		u.LastRequestDate = &now
		return u
	})
	if errors.Is(errUpdate, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return errUpdate
}

// effectiveCount computes the count valid for today from a loaded record.
func (t *Tracker) effectiveCount(user models.User) int {
	if user.LastRequestDate == nil {
		return 0
	}
	if !sameUTCDay(*user.LastRequestDate, t.nowFn()) {
		return 0
	}
	return user.RequestCount
}

// sameUTCDay reports whether two instants fall on the same UTC calendar day.
func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
