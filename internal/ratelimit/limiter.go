// Package ratelimit bounds how often scene switches may fire. The show
// host needs breathing room between product cuts, so admissions are
// counted over a sliding window rather than a refilling bucket: a burst
// at the end of one minute must not unlock another burst at the start
// of the next.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits at most Max events per sliding Window. Safe for
// concurrent use.
type Limiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	marks  []time.Time

	now func() time.Time
}

// New creates a limiter admitting at most max events per window.
// A non-positive max or window disables limiting entirely.
func New(window time.Duration, max int) *Limiter {
	return &Limiter{
		window: window,
		max:    max,
		now:    time.Now,
	}
}

// Allow records an admission and returns true if the event fits in the
// current window. Denied events are not recorded; they do not extend
// the window.
func (l *Limiter) Allow() bool {
	if l == nil || l.max <= 0 || l.window <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)
	if len(l.marks) >= l.max {
		return false
	}
	l.marks = append(l.marks, now)
	return true
}

// WouldAllow reports whether an admission would currently succeed
// without recording one.
func (l *Limiter) WouldAllow() bool {
	if l == nil || l.max <= 0 || l.window <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(l.now())
	return len(l.marks) < l.max
}

// Reset forgets all admissions.
func (l *Limiter) Reset() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.marks = l.marks[:0]
}

func (l *Limiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	kept := l.marks[:0]
	for _, mark := range l.marks {
		if mark.After(cutoff) {
			kept = append(kept, mark)
		}
	}
	l.marks = kept
}
