package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit describes how often one action may happen per user.
type Limit struct {
	PerMinute int
	Burst     int
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per user and action.
type RateLimiter struct {
	limits   map[string]Limit
	fallback Limit

	mu      sync.Mutex
	buckets map[string]*entry
}

func NewRateLimiter(limits map[string]Limit, fallback Limit) *RateLimiter {
	return &RateLimiter{
		limits:   limits,
		fallback: fallback,
		buckets:  make(map[string]*entry),
	}
}

// Allow consumes a token for userID:action if one is available.
func (rl *RateLimiter) Allow(userID, action string) bool {
	return rl.get(userID, action).Allow()
}

func (rl *RateLimiter) get(userID, action string) *rate.Limiter {
	key := userID + ":" + action

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if e, ok := rl.buckets[key]; ok {
		e.lastSeen = time.Now()
		return e.limiter
	}

	limit, ok := rl.limits[action]
	if !ok {
		limit = rl.fallback
	}
	burst := limit.Burst
	if burst <= 0 {
		burst = limit.PerMinute
	}

	l := rate.NewLimiter(rate.Every(time.Minute/time.Duration(max(limit.PerMinute, 1))), max(burst, 1))
	rl.buckets[key] = &entry{limiter: l, lastSeen: time.Now()}
	return l
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxIdle)
	for key, e := range rl.buckets {
		if e.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Cleanup(maxIdle)
			case <-ctx.Done():
				return
			}
		}
	}()
}
