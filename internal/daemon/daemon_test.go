package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFileLifecycle(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "run", "focusday.pid"))

	pid, err := d.ReadPID()
	require.NoError(t, err)
	assert.Zero(t, pid)

	require.NoError(t, d.WritePID())
	pid, err = d.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	running, pid, err := d.IsRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, d.RemovePID())
	require.NoError(t, d.RemovePID())
}

func TestStalePIDFileIsRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusday.pid")
	// Larger than any pid_max the kernel allows
	require.NoError(t, os.WriteFile(path, []byte("2147483000\n"), 0644))
	d := New(path)

	running, _, err := d.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)
	assert.NoFileExists(t, path)

	assert.ErrorIs(t, d.Stop(0), ErrNotRunning)
}

func TestInvalidPIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusday.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))

	_, _, err := New(path).IsRunning()
	assert.Error(t, err)
}

func TestIsChild(t *testing.T) {
	t.Setenv(ChildEnv, "")
	assert.False(t, IsChild())
	t.Setenv(ChildEnv, "1")
	assert.True(t, IsChild())
}
