package fanout

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsBurstUpToLimit(t *testing.T) {
	limiter := NewRateLimiter()

	for i := 0; i < 100; i++ {
		if !limiter.Allow("alice") {
			t.Fatalf("message %d unexpectedly blocked", i)
		}
	}
	if limiter.Allow("alice") {
		t.Error("message 101 within the window must be blocked")
	}
}

func TestRateLimiterIsPerSender(t *testing.T) {
	limiter := NewRateLimiter()

	for i := 0; i < 100; i++ {
		limiter.Allow("alice")
	}
	if !limiter.Allow("bob") {
		t.Error("one sender's limit must not affect another")
	}
}

func TestRateLimiterCleanupPrunesStaleSenders(t *testing.T) {
	limiter := NewRateLimiter()

	limiter.Allow("alice")
	limiter.Allow("bob")

	// Age alice's window past the stale threshold
	limiter.mu.Lock()
	limiter.clients["alice"].windowStart = time.Now().Add(-6 * time.Minute)
	limiter.mu.Unlock()

	limiter.Cleanup()

	limiter.mu.Lock()
	_, aliceKept := limiter.clients["alice"]
	_, bobKept := limiter.clients["bob"]
	limiter.mu.Unlock()

	if aliceKept {
		t.Error("stale sender entry must be pruned")
	}
	if !bobKept {
		t.Error("active sender entry must survive cleanup")
	}
}
