// ABOUTME: Sliding-window rate limiter for the context-build operation
// ABOUTME: Over-limit calls are rejected immediately, never queued or delayed
package gateway

import (
	"sync"
	"time"
)

// slidingLimiter allows at most max calls per window. It is a counter, not a
// queue: Allow never blocks.
type slidingLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	calls  []time.Time
	now    func() time.Time
}

func newSlidingLimiter(max int, window time.Duration) *slidingLimiter {
	return &slidingLimiter{max: max, window: window, now: time.Now}
}

// Allow records a call attempt and reports whether it is within the limit.
func (l *slidingLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	kept := l.calls[:0]
	for _, t := range l.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.calls = kept

	if len(l.calls) >= l.max {
		return false
	}
	l.calls = append(l.calls, now)
	return true
}
