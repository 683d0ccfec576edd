package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, now *time.Time) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: 10 * time.Minute,
	})
	rl.now = func() time.Time { return *now }
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiter_LocksOutAfterMaxAttempts(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	assert.False(t, rl.RecordFailure("1.2.3.4", "a@example.com"))
	assert.False(t, rl.RecordFailure("1.2.3.4", "a@example.com"))
	assert.True(t, rl.RecordFailure("1.2.3.4", "A@example.com"))

	allowed, retryAfter := rl.Allow("1.2.3.4", "a@example.com")
	assert.False(t, allowed)
	assert.Equal(t, 10*time.Minute, retryAfter)

	// Other keys are unaffected
	allowed, _ = rl.Allow("5.6.7.8", "a@example.com")
	assert.True(t, allowed)

	now = now.Add(11 * time.Minute)
	allowed, _ = rl.Allow("1.2.3.4", "a@example.com")
	assert.True(t, allowed)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	rl.RecordFailure("ip", "a@example.com")
	rl.RecordFailure("ip", "a@example.com")

	now = now.Add(2 * time.Minute)
	assert.False(t, rl.RecordFailure("ip", "a@example.com"))
	allowed, _ := rl.Allow("ip", "a@example.com")
	assert.True(t, allowed)
}

func TestRateLimiter_SuccessClears(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	rl.RecordFailure("ip", "a@example.com")
	rl.RecordFailure("ip", "a@example.com")
	rl.RecordSuccess("ip", "a@example.com")

	assert.False(t, rl.RecordFailure("ip", "a@example.com"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, &now)

	rl.RecordFailure("ip", "a@example.com")
	now = now.Add(time.Hour)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.attempts)
}
