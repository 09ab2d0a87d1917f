package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		result, errAllow := limiter.Allow(context.Background(), "u:1", 2, now)
		if errAllow != nil {
			t.Fatalf("allow: %v", errAllow)
		}
		if !result.Allowed {
			t.Fatalf("expected request %d allowed", i+1)
		}
	}

	result, errAllow := limiter.Allow(context.Background(), "u:1", 2, now)
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if result.Allowed {
		t.Fatalf("expected third request in same second blocked")
	}

	// A new second opens a fresh window.
	result, errAllow = limiter.Allow(context.Background(), "u:1", 2, now.Add(time.Second))
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if !result.Allowed {
		t.Fatalf("expected request in next second allowed")
	}
}

func TestMemoryLimiterZeroLimitAllows(t *testing.T) {
	limiter := NewMemoryLimiter()
	result, errAllow := limiter.Allow(context.Background(), "u:1", 0, time.Now())
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if !result.Allowed {
		t.Fatalf("expected zero limit to disable the limiter")
	}
}

func TestManagerUsesMemoryWithoutRedis(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	manager := NewManager(func() Settings { return Settings{Limit: 1} }, func() time.Time { return now }, nil)

	result, errAllow := manager.Allow(context.Background(), UserKey("u1"), 1)
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if !result.Allowed {
		t.Fatalf("expected first request allowed")
	}

	result, errAllow = manager.Allow(context.Background(), UserKey("u1"), 1)
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if result.Allowed {
		t.Fatalf("expected second request in same second blocked")
	}
}

func TestManagerRedisFailureFallsBackToMemory(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	// Redis enabled but unreachable: the breaker trips and memory serves.
	manager := NewManager(func() Settings {
		return Settings{Limit: 1, RedisEnabled: true, RedisAddr: "127.0.0.1:1"}
	}, func() time.Time { return now }, nil)

	result, errAllow := manager.Allow(context.Background(), UserKey("u1"), 1)
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if !result.Allowed {
		t.Fatalf("expected fallback to memory to allow first request")
	}
}

func TestUserKey(t *testing.T) {
	if got := UserKey("abc"); got != "u:abc" {
		t.Fatalf("expected u:abc, got %q", got)
	}
	if got := UserKey(""); got != "" {
		t.Fatalf("expected empty key for empty user, got %q", got)
	}
}
