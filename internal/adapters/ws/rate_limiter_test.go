package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageRateLimiter(t *testing.T) {
	rl := NewMessageRateLimiter(2, 50*time.Millisecond)

	assert.True(t, rl.Allow("s1"))
	assert.True(t, rl.Allow("s1"))
	assert.False(t, rl.Allow("s1"))

	// Separate connections have separate windows.
	assert.True(t, rl.Allow("s2"))

	// Window slides: after the interval the budget recovers.
	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("s1"))
}

func TestMessageRateLimiterDisabled(t *testing.T) {
	rl := NewMessageRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("s1"))
	}
}

func TestMessageRateLimiterForget(t *testing.T) {
	rl := NewMessageRateLimiter(1, time.Minute)
	assert.True(t, rl.Allow("s1"))
	assert.False(t, rl.Allow("s1"))

	rl.Forget("s1")
	assert.True(t, rl.Allow("s1"))
}
