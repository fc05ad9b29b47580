package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter uses precise timing with drift compensation.
// Combines sleep for efficiency with busy-waiting for accuracy.
type AdaptiveLimiter struct {
	targetTickTime time.Duration
	nextTickTime   time.Time
	tickCounter    int64
	started        time.Time
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	now := time.Now()
	return &AdaptiveLimiter{
		targetTickTime: TickDuration(),
		nextTickTime:   now,
		started:        now,
	}
}

func (a *AdaptiveLimiter) WaitForNextTick() {
	now := time.Now()
	sleepTime := a.nextTickTime.Sub(now)

	if sleepTime > 0 {
		if sleepTime >= 2*time.Millisecond {
			time.Sleep(sleepTime - time.Millisecond)
		}
		for time.Now().Before(a.nextTickTime) {
			// busy-wait the last millisecond, higher accuracy.
		}
	} else if sleepTime < -5*time.Millisecond {
		// too far behind, don't try to catch up
		a.nextTickTime = now
	}

	a.nextTickTime = a.nextTickTime.Add(a.targetTickTime)
	a.tickCounter++

	if a.tickCounter%TicksPerSecond == 0 {
		drift := time.Now().Sub(a.nextTickTime)
		if drift.Abs() > 10*time.Millisecond {
			a.nextTickTime = a.nextTickTime.Add(drift / 10)
			elapsed := time.Since(a.started).Seconds()
			slog.Debug("Tick timing drift correction",
				"drift_ms", drift.Milliseconds(),
				"tps", float64(a.tickCounter)/elapsed)
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextTickTime = time.Now()
	a.started = a.nextTickTime
	a.tickCounter = 0
}
