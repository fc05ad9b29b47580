package timing

import "time"

// TickerLimiter uses time.Ticker for simple, consistent tick timing.
// Less accurate than AdaptiveLimiter but simpler and good enough for most cases.
type TickerLimiter struct {
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(TickDuration())}
}

func (t *TickerLimiter) WaitForNextTick() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(TickDuration())
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
