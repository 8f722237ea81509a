package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/actionsum/focusday/internal/clock"
	"github.com/actionsum/focusday/internal/config"
	"github.com/actionsum/focusday/internal/models"
	"github.com/actionsum/focusday/internal/reporter"
	"github.com/actionsum/focusday/internal/store"
)

type fakeTracker struct {
	running bool
	current *models.Progress
}

func (f fakeTracker) IsRunning() bool           { return f.running }
func (f fakeTracker) Current() *models.Progress { return f.current }

type fixture struct {
	mux   *http.ServeMux
	store *store.FileStore
	hub   *Hub
}

func newFixture(t *testing.T, tracker Tracker) *fixture {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC))
	st, err := store.NewFileStore(t.TempDir(), time.UTC, clk, zap.NewNop())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Report.TimeZone = "UTC"
	rep, err := reporter.New(cfg, st, clk, zap.NewNop())
	require.NoError(t, err)

	hub := NewHub(zap.NewNop())
	t.Cleanup(hub.Close)

	mux := http.NewServeMux()
	NewHandler(cfg, rep, tracker, hub, clk, zap.NewNop()).SetupRoutes(mux)
	return &fixture{mux: mux, store: st, hub: hub}
}

func (f *fixture) seed(t *testing.T, date, app, domain string, seconds int64) {
	t.Helper()
	require.NoError(t, f.store.Append(context.Background(), models.Session{
		App: app, Title: app, Domain: models.StringPtr(domain), Duration: seconds,
		Timestamp: date + "T10:00:00.000Z", Date: date,
	}))
}

func (f *fixture) do(method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleToday(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "2024-03-10", "Editor", "", 120)
	f.seed(t, "2024-03-10", "Browser", "video.example", 60)

	rec := f.do(http.MethodGet, "/api/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.AppStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(120), got["Editor"].TotalTime)
	assert.Equal(t, 1, got["Browser"].Domains["video.example"].Visits)
}

func TestHandleStats(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "2024-03-09", "Editor", "", 40)

	rec := f.do(http.MethodGet, "/api/stats?date=2024-03-09", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalTime":40`)

	rec = f.do(http.MethodGet, "/api/stats?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid input")
}

func TestHandleDates(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "2024-03-01", "Editor", "", 40)
	f.seed(t, "2024-03-09", "Editor", "", 40)

	rec := f.do(http.MethodGet, "/api/dates", nil)
	var dates []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dates))
	assert.Equal(t, []string{"2024-03-09", "2024-03-01"}, dates)
}

func TestHandleSummary(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "2024-03-10", "Editor", "", 10)
	f.seed(t, "2024-03-09", "Editor", "", 20)

	rec := f.do(http.MethodGet, "/api/summary?days=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(10), got.TotalTime)
	assert.Equal(t, 1, got.DaysTracked)

	for _, bad := range []string{"0", "-3", "abc"} {
		rec = f.do(http.MethodGet, "/api/summary?days="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestHandleReport(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "2024-03-10", "<b>Editor</b>", "", 600)

	rec := f.do(http.MethodGet, "/api/report?period=week", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"period":"week"`)

	rec = f.do(http.MethodGet, "/api/report", http.Header{"Hx-Request": {"true"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "&lt;b&gt;Editor&lt;/b&gt;")
	assert.Contains(t, rec.Body.String(), "Total: 10m")

	rec = f.do(http.MethodGet, "/api/report?period=decade", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRetention(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "2023-01-01", "Editor", "", 10)
	f.seed(t, "2024-03-10", "Editor", "", 10)

	rec := f.do(http.MethodGet, "/api/retention?days=30", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = f.do(http.MethodPost, "/api/retention?days=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1,"days_to_keep":30}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/retention?days=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStatus(t *testing.T) {
	p := &models.Progress{App: "Editor", Title: "main.go", Elapsed: 42}
	f := newFixture(t, fakeTracker{running: true, current: p})

	rec := f.do(http.MethodGet, "/api/status", nil)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, true, got["running"])
	assert.Equal(t, "2024-03-10", got["today"])
	current := got["current"].(map[string]interface{})
	assert.Equal(t, "Editor", current["app"])
	assert.Equal(t, float64(42), current["elapsedTime"])
}

func TestHandleIndexAndHealth(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/live")

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/missing", nil).Code)

	rec = f.do(http.MethodGet, "/health", nil)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestLiveProgress(t *testing.T) {
	f := newFixture(t, nil)
	srv := httptest.NewServer(f.mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	f.hub.PublishProgress(models.Progress{App: "Editor", Title: "main.go", Elapsed: 7})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageProgress, msg.Type)
	require.NotNil(t, msg.Progress)
	assert.Equal(t, int64(7), msg.Progress.Elapsed)

	dates := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.hub.ForwardRecordUpdates(ctx, dates)
	dates <- "2024-03-10"

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageRecordUpdated, msg.Type)
	assert.Equal(t, "2024-03-10", msg.Date)

	conn.Close()
	assert.Eventually(t, func() bool { return f.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(zap.NewNop())
	for i := 0; i < 100; i++ {
		hub.PublishProgress(models.Progress{App: "Editor"})
	}
	hub.Close()
	assert.Zero(t, hub.Count())
}
