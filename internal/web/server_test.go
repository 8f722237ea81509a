package web

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/actionsum/focusday/internal/clock"
	"github.com/actionsum/focusday/internal/config"
	"github.com/actionsum/focusday/internal/reporter"
	"github.com/actionsum/focusday/internal/store"
)

func newTestServer(t *testing.T, host string, port int) *Server {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC))
	st, err := store.NewFileStore(t.TempDir(), time.UTC, clk, zap.NewNop())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Report.TimeZone = "UTC"
	cfg.Web.Host = host
	rep, err := reporter.New(cfg, st, clk, zap.NewNop())
	require.NoError(t, err)

	handler := NewHandler(cfg, rep, fakeTracker{}, NewHub(zap.NewNop()), clk, zap.NewNop())
	return NewServer(cfg, handler, port, zap.NewNop())
}

func TestServerAddressUsesCustomPort(t *testing.T) {
	s := newTestServer(t, "127.0.0.1", 18123)
	assert.Equal(t, "127.0.0.1:18123", s.GetAddress())
	assert.Equal(t, 5*time.Second, s.server.ReadHeaderTimeout)
	assert.NotNil(t, s.server.ErrorLog)
}

func TestServerStartFailsWhenPortTaken(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := newTestServer(t, "127.0.0.1", ln.Addr().(*net.TCPAddr).Port)
	assert.Error(t, s.Start())
}

func TestServerShutdownBeforeStart(t *testing.T) {
	s := newTestServer(t, "127.0.0.1", 18124)
	assert.NoError(t, s.Shutdown(context.Background()))
}
