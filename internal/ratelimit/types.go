// Package ratelimit applies a per-second burst limit on top of the daily
// quota, using a fixed-window counter in memory or in Redis.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a burst limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides fixed-window rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}

// Settings is a snapshot of the burst limit configuration.
type Settings struct {
	Limit         int // Requests per second, 0 disables the limiter.
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// SettingsProvider supplies the latest settings snapshot.
type SettingsProvider func() Settings
