package fanout

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements per-sender rate limiting
// ARCHITECTURAL DISCOVERY: Per-client state tracking with periodic cleanup prevents memory leaks
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimit
}

// clientLimit tracks the sliding window for a single sender
type clientLimit struct {
	messageCount int
	windowStart  time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimit),
	}
}

// Allow checks if the sender can send a message (100 per minute limit)
func (rl *RateLimiter) Allow(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	limit, exists := rl.clients[userID]
	if !exists {
		// First message always allowed, initialize tracking
		rl.clients[userID] = &clientLimit{messageCount: 1, windowStart: now}
		return true
	}

	// TECHNICAL DISCOVERY: Window resets exactly every minute for consistent limiting
	if now.Sub(limit.windowStart) >= time.Minute {
		limit.messageCount = 1
		limit.windowStart = now
		return true
	}

	if limit.messageCount >= 100 {
		return false
	}

	limit.messageCount++
	return true
}

// StartCleanup prunes stale sender entries once a minute until ctx is done
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Cleanup removes stale sender entries
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for userID, limit := range rl.clients {
		if now.Sub(limit.windowStart) > 5*time.Minute {
			delete(rl.clients, userID)
		}
	}
}
