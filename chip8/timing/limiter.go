package timing

import "time"

// Limiter paces the run loop at the tick rate.
type Limiter interface {
	// WaitForNextTick blocks until it's time for the next tick.
	// Returns immediately if timing is behind schedule.
	WaitForNextTick()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextTick() {}
func (n *noOpLimiter) Reset()           {}

// TicksPerSecond is the rate at which timers count down and the screen is presented.
const TicksPerSecond = 60

// TickDuration returns the target duration of a single tick.
func TickDuration() time.Duration {
	return time.Second / TicksPerSecond
}
