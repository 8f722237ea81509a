package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced clock.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// FakeTicker delivers ticks only when Tick is called.
type FakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func NewFakeTicker() *FakeTicker {
	return &FakeTicker{ch: make(chan time.Time)}
}

func (f *FakeTicker) C() <-chan time.Time { return f.ch }

func (f *FakeTicker) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

// Stopped reports whether Stop was called.
func (f *FakeTicker) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// Tick blocks until the receiver has taken the tick.
func (f *FakeTicker) Tick(t time.Time) {
	f.ch <- t
}

// Factory returns a TickerFactory that always hands out f.
func (f *FakeTicker) Factory() TickerFactory {
	return func(time.Duration) Ticker { return f }
}
