// Package metrics records sampler activity through OpenTelemetry.
package metrics

import "context"

// Recorder receives sampler events. Implementations must not block.
type Recorder interface {
	Tick(ctx context.Context)
	ProbeFailed(ctx context.Context)
	SessionFlushed(ctx context.Context, app string, seconds int64)
	SessionDiscarded(ctx context.Context)
	PersistFailed(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// Noop discards everything.
type Noop struct{}

func (Noop) Tick(context.Context)                          {}
func (Noop) ProbeFailed(context.Context)                   {}
func (Noop) SessionFlushed(context.Context, string, int64) {}
func (Noop) SessionDiscarded(context.Context)              {}
func (Noop) PersistFailed(context.Context)                 {}
func (Noop) Shutdown(context.Context) error                { return nil }

var _ Recorder = Noop{}
