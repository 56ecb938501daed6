// Package clock abstracts the current time so revision timestamps, audit
// windows and record edit times can be pinned in tests.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system time, in UTC.
type RealClock struct{}

// Now returns the current UTC time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a manually advanced clock. The zero value reports the zero time.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed returns a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

// Now returns the frozen time.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

var (
	_ Clock = RealClock{}
	_ Clock = (*Fixed)(nil)
)
