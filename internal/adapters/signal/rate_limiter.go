package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Lounge/internal/domain"
)

type limiterKey struct {
	code domain.RoomCode
	name domain.Username
}

// RoomRateLimiter is a sliding-window limiter per (room, username).
// Windows outlive the connection, so reconnecting does not refill them.
type RoomRateLimiter struct {
	mu        sync.Mutex
	history   map[limiterKey][]time.Time
	limit     int
	interval  time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewRoomRateLimiter(limit int, interval time.Duration) *RoomRateLimiter {
	return &RoomRateLimiter{
		history:  make(map[limiterKey][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Allow records an attempt by name in code and reports whether it fits
// the window. A non-positive limit disables limiting.
func (rl *RoomRateLimiter) Allow(code domain.RoomCode, name domain.Username) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)
	rl.sweep(now, windowStart)

	key := limiterKey{code: code, name: name}
	fresh := prune(rl.history[key], windowStart)
	if len(fresh) >= rl.limit {
		rl.history[key] = fresh
		return false
	}
	rl.history[key] = append(fresh, now)
	return true
}

// sweep drops keys with no attempt inside the window, at most once per
// interval. Called with rl.mu held.
func (rl *RoomRateLimiter) sweep(now, windowStart time.Time) {
	if now.Sub(rl.lastSweep) < rl.interval {
		return
	}
	rl.lastSweep = now
	for key, attempts := range rl.history {
		fresh := prune(attempts, windowStart)
		if len(fresh) == 0 {
			delete(rl.history, key)
			continue
		}
		rl.history[key] = fresh
	}
}

func prune(attempts []time.Time, windowStart time.Time) []time.Time {
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	return fresh
}
