package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/focusday/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusday.log")

	logger, err := New(config.LogConfig{Level: "debug", File: path}, false)
	require.NoError(t, err)

	logger.Info("session flushed")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"session flushed"`)
	assert.Contains(t, string(data), `"time":`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"}, true)
	assert.Error(t, err)
}
