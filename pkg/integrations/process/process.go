// Package process resolves the executable name that owns a window.
package process

import (
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

// Names looks up process names by PID and remembers them while the PID stays
// alive with the same start time.
type Names struct {
	mu    sync.Mutex
	cache map[int32]entry
}

type entry struct {
	name      string
	createdAt int64
}

func NewNames() *Names {
	return &Names{cache: make(map[int32]entry)}
}

// Lookup returns the process name for pid.
func (n *Names) Lookup(pid int) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("invalid pid %d", pid)
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", fmt.Errorf("process %d: %w", pid, err)
	}
	created, err := proc.CreateTime()
	if err != nil {
		return "", fmt.Errorf("process %d start time: %w", pid, err)
	}

	n.mu.Lock()
	cached, ok := n.cache[proc.Pid]
	n.mu.Unlock()
	if ok && cached.createdAt == created {
		return cached.name, nil
	}

	name, err := proc.Name()
	if err != nil {
		return "", fmt.Errorf("process %d name: %w", pid, err)
	}

	n.mu.Lock()
	n.cache[proc.Pid] = entry{name: name, createdAt: created}
	n.mu.Unlock()
	return name, nil
}
