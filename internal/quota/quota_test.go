package quota

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lucaf1-15/lucai-backend/internal/models"
	"github.com/lucaf1-15/lucai-backend/internal/store"
)

func newUserStore(t *testing.T) *store.Collection[models.User] {
	t.Helper()
	users, errNew := store.NewCollection(filepath.Join(t.TempDir(), "users.json"), func(u models.User) string { return u.ID })
	if errNew != nil {
		t.Fatalf("new collection: %v", errNew)
	}
	return users
}

func seedUser(t *testing.T, users *store.Collection[models.User], u models.User) {
	t.Helper()
	if errInsert := users.Insert(u); errInsert != nil {
		t.Fatalf("insert user: %v", errInsert)
	}
}

func TestEffectiveCountResetsOnNewDay(t *testing.T) {
	users := newUserStore(t)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	seedUser(t, users, models.User{ID: "u1", Role: models.RoleStandard, RequestCount: 20, LastRequestDate: &yesterday})

	tracker := NewTracker(users, 20, func() time.Time { return now })

	if got := tracker.EffectiveCount("u1"); got != 0 {
		t.Fatalf("expected effective count 0 after rollover, got %d", got)
	}

	// First request of the new day resets the stored count to 1.
	if errRecord := tracker.RecordRequest("u1"); errRecord != nil {
		t.Fatalf("record request: %v", errRecord)
	}
	if got := tracker.EffectiveCount("u1"); got != 1 {
		t.Fatalf("expected count 1, got %d", got)
	}

	user, errFind := users.FindByID("u1")
	if errFind != nil {
		t.Fatalf("find user: %v", errFind)
	}
	if user.LastRequestDate == nil || !user.LastRequestDate.Equal(now) {
		t.Fatalf("expected lastRequestDate=%s, got %v", now, user.LastRequestDate)
	}
}

func TestRecordRequestIncrementsSameDay(t *testing.T) {
	users := newUserStore(t)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	earlier := now.Add(-2 * time.Hour)
	seedUser(t, users, models.User{ID: "u1", Role: models.RoleStandard, RequestCount: 19, LastRequestDate: &earlier})

	tracker := NewTracker(users, 20, func() time.Time { return now })

	if errRecord := tracker.RecordRequest("u1"); errRecord != nil {
		t.Fatalf("record request: %v", errRecord)
	}
	if got := tracker.EffectiveCount("u1"); got != 20 {
		t.Fatalf("expected count 20, got %d", got)
	}

	user, _ := users.FindByID("u1")
	errCheck := tracker.Check(user)
	var limitErr *LimitError
	if !errors.As(errCheck, &limitErr) {
		t.Fatalf("expected LimitError, got %v", errCheck)
	}
	if limitErr.Current != 20 || limitErr.Limit != 20 {
		t.Fatalf("expected 20/20, got %d/%d", limitErr.Current, limitErr.Limit)
	}
}

func TestAdminIsNeverLimitedOrCounted(t *testing.T) {
	users := newUserStore(t)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	seedUser(t, users, models.User{ID: "a1", Role: models.RoleAdmin, RequestCount: 999, LastRequestDate: &now})

	tracker := NewTracker(users, 20, func() time.Time { return now })

	admin, _ := users.FindByID("a1")
	if errCheck := tracker.Check(admin); errCheck != nil {
		t.Fatalf("expected admin to pass check, got %v", errCheck)
	}
	if errRecord := tracker.RecordRequest("a1"); errRecord != nil {
		t.Fatalf("record request: %v", errRecord)
	}

	after, _ := users.FindByID("a1")
	if after.RequestCount != 999 {
		t.Fatalf("expected admin counter untouched, got %d", after.RequestCount)
	}
}

func TestUnknownUser(t *testing.T) {
	users := newUserStore(t)
	tracker := NewTracker(users, 20, nil)

	if got := tracker.EffectiveCount("ghost"); got != 0 {
		t.Fatalf("expected 0 for unknown user, got %d", got)
	}
	if errRecord := tracker.RecordRequest("ghost"); !errors.Is(errRecord, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", errRecord)
	}
}

func TestEffectiveCountNeverRequestedUser(t *testing.T) {
	users := newUserStore(t)
	seedUser(t, users, models.User{ID: "u1", Role: models.RoleStandard})

	tracker := NewTracker(users, 20, nil)
	if got := tracker.EffectiveCount("u1"); got != 0 {
		t.Fatalf("expected 0 for user with no requests, got %d", got)
	}
}

func TestRolloverAcrossUTCMidnight(t *testing.T) {
	users := newUserStore(t)
	// 23:59 and 00:01 straddle the UTC day boundary even though they are
	// only two minutes apart.
	before := time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC)
	after := time.Date(2025, 6, 3, 0, 1, 0, 0, time.UTC)
	seedUser(t, users, models.User{ID: "u1", Role: models.RoleStandard, RequestCount: 5, LastRequestDate: &before})

	tracker := NewTracker(users, 20, func() time.Time { return after })
	if got := tracker.EffectiveCount("u1"); got != 0 {
		t.Fatalf("expected 0 across midnight, got %d", got)
	}
}
