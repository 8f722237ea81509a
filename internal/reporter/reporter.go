// Package reporter is the read side: daily stats, summaries, rollups and
// formatted reports over the day record store.
package reporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/actionsum/focusday/internal/clock"
	"github.com/actionsum/focusday/internal/config"
	"github.com/actionsum/focusday/internal/models"
	"github.com/actionsum/focusday/internal/retention"
	"github.com/actionsum/focusday/internal/stats"
	"github.com/actionsum/focusday/internal/store"
	"github.com/actionsum/focusday/pkg/utils"
)

// ErrInvalidInput marks query parameters rejected at the boundary.
var ErrInvalidInput = errors.New("invalid input")

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Reporter handles queries and report generation
type Reporter struct {
	store       store.Store
	sweeper     *retention.Sweeper
	loc         *time.Location
	clock       clock.Clock
	summaryDays int
	logger      *zap.Logger
}

// New creates a new reporter
func New(cfg *config.Config, st store.Store, clk clock.Clock, logger *zap.Logger) (*Reporter, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Reporter{
		store:       st,
		sweeper:     retention.NewSweeper(st, loc, clk, logger),
		loc:         loc,
		clock:       clk,
		summaryDays: cfg.Report.SummaryDays,
		logger:      logger,
	}, nil
}

// Today returns the current date in the configured time zone.
func (r *Reporter) Today() string {
	return models.FormatDate(r.clock.Now(), r.loc)
}

// GetTodayStats aggregates the current day.
func (r *Reporter) GetTodayStats(ctx context.Context) models.AppStats {
	return stats.Aggregate(r.readDay(ctx, r.Today()).Sessions)
}

// GetStatsByDate aggregates one day. date must be a YYYY-MM-DD calendar date.
func (r *Reporter) GetStatsByDate(ctx context.Context, date string) (models.AppStats, error) {
	if !store.ValidDate(date) {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, date)
	}
	return stats.Aggregate(r.readDay(ctx, date).Sessions), nil
}

// GetAvailableDates lists recorded dates, most recent first.
func (r *Reporter) GetAvailableDates(ctx context.Context) []string {
	dates, err := r.store.ListDates(ctx)
	if err != nil {
		r.logger.Warn("failed to list dates", zap.Error(err))
		return []string{}
	}
	return dates
}

// GetSummary totals the windowDays most recent recorded dates.
// A zero windowDays uses the configured default.
func (r *Reporter) GetSummary(ctx context.Context, windowDays int) (models.Summary, error) {
	if windowDays == 0 {
		windowDays = r.summaryDays
	}
	if windowDays < 1 {
		return models.Summary{}, fmt.Errorf("%w: window must be at least 1 day, got %d", ErrInvalidInput, windowDays)
	}

	dates := r.GetAvailableDates(ctx)
	if len(dates) > windowDays {
		dates = dates[:windowDays]
	}
	return stats.Summarize(r.readDays(ctx, dates), windowDays), nil
}

// ClearOldData deletes records older than daysToKeep days and returns the count.
func (r *Reporter) ClearOldData(ctx context.Context, daysToKeep int) (int, error) {
	if daysToKeep < 1 {
		return 0, fmt.Errorf("%w: days to keep must be at least 1, got %d", ErrInvalidInput, daysToKeep)
	}
	return r.sweeper.Sweep(ctx, daysToKeep), nil
}

// GetWeekly rolls up the seven most recent recorded dates.
func (r *Reporter) GetWeekly(ctx context.Context) models.Rollup {
	dates := r.GetAvailableDates(ctx)
	if len(dates) > stats.WeekDays {
		dates = dates[:stats.WeekDays]
	}
	return stats.Weekly(r.readDays(ctx, dates))
}

// GetMonthly rolls up month (YYYY-MM). An empty month means the current one.
func (r *Reporter) GetMonthly(ctx context.Context, month string) (models.Rollup, error) {
	if month == "" {
		month = r.Today()[:7]
	}
	if !monthPattern.MatchString(month) {
		return models.Rollup{}, fmt.Errorf("%w: month %q must be YYYY-MM", ErrInvalidInput, month)
	}

	var dates []string
	for _, d := range r.GetAvailableDates(ctx) {
		if strings.HasPrefix(d, month+"-") {
			dates = append(dates, d)
		}
	}
	return stats.Monthly(r.readDays(ctx, dates), month), nil
}

// GenerateReport builds the day, week or month report.
func (r *Reporter) GenerateReport(ctx context.Context, period string) (*models.Report, error) {
	var rollup models.Rollup

	switch period {
	case "day", "today":
		today := r.Today()
		rollup = stats.Rollup("day "+today, []models.DayRecord{r.readDay(ctx, today)}, 0)

	case "week":
		rollup = r.GetWeekly(ctx)

	case "month":
		var err error
		rollup, err = r.GetMonthly(ctx, "")
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: period %q (valid: day, week, month)", ErrInvalidInput, period)
	}

	return &models.Report{Rollup: rollup, GeneratedAt: r.clock.Now()}, nil
}

// readDay never fails; degraded records were already logged by the store.
func (r *Reporter) readDay(ctx context.Context, date string) models.DayRecord {
	rec, err := r.store.ReadDay(ctx, date)
	if err != nil && !store.IsDegraded(err) {
		r.logger.Warn("failed to read day record", zap.String("date", date), zap.Error(err))
	}
	return rec
}

func (r *Reporter) readDays(ctx context.Context, dates []string) []models.DayRecord {
	records := make([]models.DayRecord, 0, len(dates))
	for _, d := range dates {
		records = append(records, r.readDay(ctx, d))
	}
	return records
}

// FormatReportText formats the report as human-readable text
func FormatReportText(report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Activity Report - %s\n", report.Period)
	switch len(report.Dates) {
	case 0:
	case 1:
		fmt.Fprintf(&b, "Date: %s\n", report.Dates[0])
	default:
		fmt.Fprintf(&b, "Dates: %s to %s (%d days tracked)\n",
			report.Dates[len(report.Dates)-1], report.Dates[0], len(report.Dates))
	}
	fmt.Fprintf(&b, "Total Time: %s", utils.FormatDuration(report.TotalTime))
	if len(report.Dates) > 1 {
		fmt.Fprintf(&b, "  Daily Average: %s", utils.FormatDuration(report.AverageDaily))
	}
	b.WriteString("\n\n")

	if len(report.Apps) == 0 {
		b.WriteString("No activity recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-36s %10s %9s\n", "Application", "Time", "Percent")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 57))

	for _, app := range report.Apps {
		fmt.Fprintf(&b, "%-36s %10s %8.1f%%\n",
			truncate(app.App, 36),
			utils.FormatDuration(app.TotalTime),
			app.Percentage)
		for _, d := range app.Domains {
			fmt.Fprintf(&b, "  %-34s %10s\n", truncate(d.Domain, 34), utils.FormatDuration(d.TotalTime))
		}
	}

	if len(report.Dates) > 1 {
		b.WriteString("\nDaily Totals:\n")
		for _, d := range report.Dates {
			fmt.Fprintf(&b, "  %s %6s\n", d, utils.FormatRoundedUnit(report.DailyTotals[d]))
		}
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
