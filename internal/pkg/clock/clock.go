package clock

import (
	"sync"
	"time"
)

// Clocker is the only way usecases read the current time.
type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the system clock in UTC so stored timestamps and
// computed expiries never depend on the host time zone.
type TimeClocker struct{}

func New() *TimeClocker {
	return &TimeClocker{}
}

func (*TimeClocker) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clocker that only moves when told to. Safe for concurrent use.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(at time.Time) *Fixed {
	return &Fixed{now: at}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Set(at time.Time) {
	f.mu.Lock()
	f.now = at
	f.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (f *Fixed) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}
