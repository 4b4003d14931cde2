package canvas

import (
	"time"
)

// Rate limiting is a fixed window per connection: up to capacity
// events are admitted per window, the rest are dropped outright.
// There is no queuing and no backpressure beyond the drop.
const (
	RateLimitWindow   = time.Second
	RateLimitCapacity = 100
)

type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter counts admitted events per connection in fixed windows.
// It is not safe for concurrent use; the router drives it from the
// hub's single dispatch goroutine.
type RateLimiter struct {
	entries  map[string]*rateEntry
	window   time.Duration
	capacity int
	now      func() time.Time
}

// NewRateLimiter creates a limiter with the given window and capacity.
// Non-positive arguments fall back to the defaults.
func NewRateLimiter(window time.Duration, capacity int) *RateLimiter {
	if window <= 0 {
		window = RateLimitWindow
	}
	if capacity <= 0 {
		capacity = RateLimitCapacity
	}
	return &RateLimiter{
		entries:  make(map[string]*rateEntry),
		window:   window,
		capacity: capacity,
		now:      time.Now,
	}
}

// Admit reports whether one more event from the connection fits in the
// current window. The entry is created lazily on first call and a
// fresh window opens whenever the current one has expired.
func (rl *RateLimiter) Admit(connID string) bool {
	now := rl.now()
	e, ok := rl.entries[connID]
	if !ok {
		e = &rateEntry{}
		rl.entries[connID] = e
	}
	if !ok || now.After(e.windowEnd) {
		e.count = 0
		e.windowEnd = now.Add(rl.window)
	}
	if e.count >= rl.capacity {
		return false
	}
	e.count++
	return true
}

// Forget discards the connection's entry. Called on disconnect.
func (rl *RateLimiter) Forget(connID string) {
	delete(rl.entries, connID)
}
