package window

// Sample is one reading of the foreground window
type Sample struct {
	OwnerProcessName string
	WindowTitle      string
	PID              int
	DisplayServer    string // "x11" or "wayland"
}

// Probe is the capability the sampler polls on every tick.
// Poll returns nil, nil when no foreground window is available.
// Implementations may fail intermittently; callers treat errors as transient.
type Probe interface {
	Poll() (*Sample, error)
}

// Resolver lazily creates a Probe. A failure means monitoring cannot start.
type Resolver func() (Probe, error)

// ProbeFunc adapts a function to the Probe interface
type ProbeFunc func() (*Sample, error)

func (f ProbeFunc) Poll() (*Sample, error) {
	return f()
}

// Closer is implemented by probes holding OS resources
type Closer interface {
	Close() error
}

// Static returns a Resolver that always yields p.
func Static(p Probe) Resolver {
	return func() (Probe, error) { return p, nil }
}
