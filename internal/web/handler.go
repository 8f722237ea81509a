package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/actionsum/focusday/internal/clock"
	"github.com/actionsum/focusday/internal/config"
	"github.com/actionsum/focusday/internal/models"
	"github.com/actionsum/focusday/internal/reporter"
	"github.com/actionsum/focusday/pkg/utils"
)

// Tracker is the part of the sampler the status endpoint reports on.
type Tracker interface {
	IsRunning() bool
	Current() *models.Progress
}

type Handler struct {
	config   *config.Config
	reporter *reporter.Reporter
	tracker  Tracker
	hub      *Hub
	clock    clock.Clock
	logger   *zap.Logger
}

// NewHandler wires the API. tracker may be nil when the sampler runs elsewhere.
func NewHandler(cfg *config.Config, rep *reporter.Reporter, tracker Tracker, hub *Hub, clk clock.Clock, logger *zap.Logger) *Handler {
	return &Handler{
		config:   cfg,
		reporter: rep,
		tracker:  tracker,
		hub:      hub,
		clock:    clk,
		logger:   logger,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/today", h.handleToday)
	mux.HandleFunc("/api/stats", h.handleStats)
	mux.HandleFunc("/api/dates", h.handleDates)
	mux.HandleFunc("/api/summary", h.handleSummary)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/retention", h.handleRetention)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/live", h.hub.ServeWS)

	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.respondJSON(w, h.reporter.GetTodayStats(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.reporter.Today()
	}

	result, err := h.reporter.GetStatsByDate(r.Context(), date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, result)
}

func (h *Handler) handleDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.respondJSON(w, h.reporter.GetAvailableDates(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	days, err := intParam(r, "days")
	if err != nil {
		h.respondError(w, err)
		return
	}

	summary, err := h.reporter.GetSummary(r.Context(), days)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, summary)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "day"
	}

	report, err := h.reporter.GenerateReport(r.Context(), period)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		h.respondRollupHTML(w, report.Rollup)
		return
	}
	h.respondJSON(w, report)
}

func (h *Handler) handleRetention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	days, err := intParam(r, "days")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if days == 0 {
		days = h.config.Retention.DaysToKeep
	}

	deleted, err := h.reporter.ClearOldData(r.Context(), days)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, map[string]int{"deleted": deleted, "days_to_keep": days})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]interface{}{
		"running":         false,
		"poll_interval":   h.config.Tracker.PollInterval.String(),
		"min_session":     h.config.Tracker.MinSessionDuration.String(),
		"storage_backend": h.config.Storage.Backend,
		"time_zone":       h.config.Report.TimeZone,
		"today":           h.reporter.Today(),
		"live_clients":    h.hub.Count(),
	}

	if h.tracker != nil {
		status["running"] = h.tracker.IsRunning()
		if cur := h.tracker.Current(); cur != nil {
			status["current"] = cur
		}
	}

	h.respondJSON(w, status)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   h.clock.Now().Format(models.InstantLayout),
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func (h *Handler) respondRollupHTML(w http.ResponseWriter, rollup models.Rollup) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if len(rollup.Apps) == 0 {
		w.Write([]byte(`<div class="loading">No data available</div>`))
		return
	}

	var b strings.Builder
	b.WriteString(`<div class="listing">`)
	for _, app := range rollup.Apps {
		fmt.Fprintf(&b, `
		<div class="app-item" style="--bar-width: %.1f%%">
			<span class="app-name">%s</span>
			<span><span class="app-time">%s</span><span class="app-percentage">%.1f%%</span></span>
		</div>`, app.Percentage, html.EscapeString(app.App), utils.FormatRoundedUnit(app.TotalTime), app.Percentage)
		for _, d := range app.Domains {
			fmt.Fprintf(&b, `
		<div class="domain-item"><span>%s</span><span class="app-time">%s</span></div>`,
				html.EscapeString(d.Domain), utils.FormatRoundedUnit(d.TotalTime))
		}
	}
	b.WriteString(`</div>`)
	fmt.Fprintf(&b, `<div class="total">Total: %s</div>`, utils.FormatRoundedUnit(rollup.TotalTime))

	w.Write([]byte(b.String()))
}

// intParam parses an optional positive integer query parameter.
// A missing parameter yields 0.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", reporter.ErrInvalidInput, name, raw)
	}
	return n, nil
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, reporter.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (h *Handler) respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
