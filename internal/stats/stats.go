// Package stats derives usage totals from stored sessions. Every function is
// pure and expects sessions in stored order.
package stats

import (
	"sort"
	"strings"

	"github.com/actionsum/focusday/internal/models"
)

const (
	maxTitlesPerDomain = 3

	WeekDays    = 7
	MonthTopApp = 10
)

// Aggregate folds sessions into per-app and per-domain totals.
func Aggregate(sessions []models.Session) models.AppStats {
	result := models.AppStats{}

	for _, s := range sessions {
		app, ok := result[s.App]
		if !ok {
			app = &models.AppUsage{Domains: map[string]*models.DomainUsage{}}
			result[s.App] = app
		}

		app.TotalTime += s.Duration
		app.Sessions++
		if s.Timestamp > app.LastUsed {
			app.LastUsed = s.Timestamp
		}

		domain := s.DomainLabel()
		if domain == "" {
			continue
		}
		du, ok := app.Domains[domain]
		if !ok {
			du = &models.DomainUsage{Titles: []string{}}
			app.Domains[domain] = du
		}
		du.TotalTime += s.Duration
		du.Visits++
		if len(du.Titles) < maxTitlesPerDomain && !contains(du.Titles, s.Title) {
			du.Titles = append(du.Titles, s.Title)
		}
	}

	return result
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Summarize totals the first windowDays records, which the caller orders
// most recent first.
func Summarize(records []models.DayRecord, windowDays int) models.Summary {
	recent := head(records, windowDays)

	summary := models.Summary{
		AppUsage:    map[string]int64{},
		DaysTracked: len(recent),
	}
	for _, rec := range recent {
		for app, usage := range Aggregate(rec.Sessions) {
			summary.TotalTime += usage.TotalTime
			summary.TotalSessions += usage.Sessions
			summary.AppUsage[app] += usage.TotalTime
		}
	}
	return summary
}

func head(records []models.DayRecord, n int) []models.DayRecord {
	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}
	return records[:n]
}

// Rollup builds a multi-day view. topN <= 0 keeps every app.
func Rollup(period string, records []models.DayRecord, topN int) models.Rollup {
	r := models.Rollup{
		Period:      period,
		Dates:       make([]string, 0, len(records)),
		DailyTotals: map[string]int64{},
		Apps:        []models.AppTotal{},
	}

	apps := map[string]int64{}
	domains := map[string]map[string]int64{}

	for _, rec := range records {
		r.Dates = append(r.Dates, rec.Date)
		var day int64
		for app, usage := range Aggregate(rec.Sessions) {
			day += usage.TotalTime
			apps[app] += usage.TotalTime
			for domain, du := range usage.Domains {
				if domains[app] == nil {
					domains[app] = map[string]int64{}
				}
				domains[app][domain] += du.TotalTime
			}
		}
		r.DailyTotals[rec.Date] += day
		r.TotalTime += day
	}

	if len(r.Dates) > 0 {
		r.AverageDaily = r.TotalTime / int64(len(r.Dates))
	}

	for app, total := range apps {
		at := models.AppTotal{App: app, TotalTime: total}
		if r.TotalTime > 0 {
			at.Percentage = float64(total) * 100 / float64(r.TotalTime)
		}
		for domain, t := range domains[app] {
			at.Domains = append(at.Domains, models.DomainTotal{Domain: domain, TotalTime: t})
		}
		sort.Slice(at.Domains, func(i, j int) bool {
			return less(at.Domains[i].TotalTime, at.Domains[j].TotalTime, at.Domains[i].Domain, at.Domains[j].Domain)
		})
		r.Apps = append(r.Apps, at)
	}
	sort.Slice(r.Apps, func(i, j int) bool {
		return less(r.Apps[i].TotalTime, r.Apps[j].TotalTime, r.Apps[i].App, r.Apps[j].App)
	})
	if topN > 0 && len(r.Apps) > topN {
		r.Apps = r.Apps[:topN]
	}

	return r
}

// less orders by time descending, then name ascending.
func less(ti, tj int64, ni, nj string) bool {
	if ti != tj {
		return ti > tj
	}
	return ni < nj
}

// Weekly rolls up the seven most recent records.
func Weekly(records []models.DayRecord) models.Rollup {
	return Rollup("week", head(records, WeekDays), 0)
}

// Monthly rolls up the records of month (YYYY-MM), keeping the top apps.
func Monthly(records []models.DayRecord, month string) models.Rollup {
	var inMonth []models.DayRecord
	for _, rec := range records {
		if strings.HasPrefix(rec.Date, month+"-") {
			inMonth = append(inMonth, rec)
		}
	}
	r := Rollup("month", inMonth, MonthTopApp)
	r.Period = "month " + month
	return r
}
