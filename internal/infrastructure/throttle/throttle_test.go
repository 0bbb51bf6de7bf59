package throttle

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestThrottleMinimumInterval(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	th := NewWithClock(10*time.Second, time.Minute, clock.Now)

	assert.True(t, th.Allow(), "first request is admitted")
	assert.False(t, th.Allow(), "second request inside the interval is refused")

	clock.Advance(5 * time.Second)
	assert.False(t, th.Allow())

	clock.Advance(5 * time.Second)
	assert.True(t, th.Allow(), "admitted once the interval has elapsed")
}

func TestThrottlePenalty(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	th := NewWithClock(10*time.Second, time.Minute, clock.Now)

	assert.True(t, th.Allow())
	th.Penalize()
	assert.Equal(t, clock.Now().Add(time.Minute), th.BlockedUntil())

	clock.Advance(30 * time.Second)
	assert.False(t, th.Allow(), "penalty outlasts the normal interval")

	clock.Advance(31 * time.Second)
	assert.True(t, th.Allow())
}

func TestThrottleZeroInterval(t *testing.T) {
	th := New(0, time.Minute)
	for i := 0; i < 5; i++ {
		assert.True(t, th.Allow())
	}
}
