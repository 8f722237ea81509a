package clock

import "time"

// Clock abstracts time so the sampler and retention stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Ticker is the subset of time.Ticker the sampler needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// NewTicker wraps time.NewTicker.
func NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}
