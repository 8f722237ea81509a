package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/focusday/internal/models"
)

func sess(app, title, domain string, d int64, ts string) models.Session {
	return models.Session{App: app, Title: title, Domain: models.StringPtr(domain), Duration: d, Timestamp: ts}
}

func TestAggregate(t *testing.T) {
	sessions := []models.Session{
		sess("Editor", "a.go", "", 100, "2024-03-10T09:00:00.000Z"),
		sess("Browser", "Video", "video.example", 60, "2024-03-10T09:02:00.000Z"),
		sess("Editor", "b.go", "", 50, "2024-03-10T09:05:00.000Z"),
	}

	got := Aggregate(sessions)
	require.Len(t, got, 2)

	editor := got["Editor"]
	assert.Equal(t, int64(150), editor.TotalTime)
	assert.Equal(t, 2, editor.Sessions)
	assert.Equal(t, "2024-03-10T09:05:00.000Z", editor.LastUsed)
	assert.Empty(t, editor.Domains)

	browser := got["Browser"]
	assert.Equal(t, int64(60), browser.TotalTime)
	assert.Equal(t, 1, browser.Sessions)
	require.Contains(t, browser.Domains, "video.example")
	assert.Equal(t, int64(60), browser.Domains["video.example"].TotalTime)
	assert.Equal(t, 1, browser.Domains["video.example"].Visits)
	assert.Equal(t, []string{"Video"}, browser.Domains["video.example"].Titles)
}

func TestAggregateOrderIndependentTotals(t *testing.T) {
	s0 := sess("Editor", "a.go", "", 100, "2024-03-10T09:00:00.000Z")
	s1 := sess("Browser", "Video", "video.example", 60, "2024-03-10T09:02:00.000Z")
	s2 := sess("Editor", "b.go", "", 50, "2024-03-10T09:05:00.000Z")
	s3 := sess("Browser", "Docs", "video.example", 40, "2024-03-10T09:07:00.000Z")

	stored := Aggregate([]models.Session{s0, s1, s2, s3})

	tests := []struct {
		name   string
		input  []models.Session
		titles []string
	}{
		{"stored", []models.Session{s0, s1, s2, s3}, []string{"Video", "Docs"}},
		{"reversed", []models.Session{s3, s2, s1, s0}, []string{"Docs", "Video"}},
		{"rotated", []models.Session{s2, s3, s0, s1}, []string{"Docs", "Video"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.input)
			require.Len(t, got, len(stored))
			for app, want := range stored {
				require.Contains(t, got, app)
				assert.Equal(t, want.TotalTime, got[app].TotalTime, app)
				assert.Equal(t, want.Sessions, got[app].Sessions, app)
				// lastUsed is a max, so it does not depend on order either
				assert.Equal(t, want.LastUsed, got[app].LastUsed, app)
			}

			du := got["Browser"].Domains["video.example"]
			assert.Equal(t, int64(100), du.TotalTime)
			assert.Equal(t, 2, du.Visits)
			// titles keep first-seen order
			assert.Equal(t, tt.titles, du.Titles)
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregateTitlesCapped(t *testing.T) {
	var sessions []models.Session
	for _, title := range []string{"one", "two", "one", "three", "four", "five"} {
		sessions = append(sessions, sess("Browser", title, "docs.example", 10, "2024-03-10T09:00:00.000Z"))
	}

	du := Aggregate(sessions)["Browser"].Domains["docs.example"]
	assert.Equal(t, []string{"one", "two", "three"}, du.Titles)
	assert.Equal(t, 6, du.Visits)
	assert.Equal(t, int64(60), du.TotalTime)
}

func TestAggregateLastUsedIsMax(t *testing.T) {
	sessions := []models.Session{
		sess("Editor", "x", "", 1, "2024-03-10T11:00:00.000Z"),
		sess("Editor", "x", "", 1, "2024-03-10T08:00:00.000Z"),
	}
	assert.Equal(t, "2024-03-10T11:00:00.000Z", Aggregate(sessions)["Editor"].LastUsed)
}

func records() []models.DayRecord {
	return []models.DayRecord{
		{Date: "2024-03-10", Sessions: []models.Session{
			sess("Editor", "a.go", "", 100, "2024-03-10T09:00:00.000Z"),
			sess("Browser", "Docs", "docs.example", 50, "2024-03-10T10:00:00.000Z"),
		}},
		{Date: "2024-03-09", Sessions: []models.Session{
			sess("Editor", "a.go", "", 30, "2024-03-09T09:00:00.000Z"),
		}},
		{Date: "2024-02-28", Sessions: []models.Session{
			sess("Terminal", "bash", "", 20, "2024-02-28T09:00:00.000Z"),
		}},
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(records(), 2)
	assert.Equal(t, int64(180), got.TotalTime)
	assert.Equal(t, 3, got.TotalSessions)
	assert.Equal(t, 2, got.DaysTracked)
	assert.Equal(t, map[string]int64{"Editor": 130, "Browser": 50}, got.AppUsage)

	all := Summarize(records(), 30)
	assert.Equal(t, 3, all.DaysTracked)
	assert.Equal(t, int64(200), all.TotalTime)

	none := Summarize(nil, 7)
	assert.Zero(t, none.DaysTracked)
	assert.NotNil(t, none.AppUsage)
}

func TestWeekly(t *testing.T) {
	got := Weekly(records())
	assert.Equal(t, "week", got.Period)
	assert.Equal(t, []string{"2024-03-10", "2024-03-09", "2024-02-28"}, got.Dates)
	assert.Equal(t, int64(200), got.TotalTime)
	assert.Equal(t, int64(66), got.AverageDaily)
	assert.Equal(t, int64(150), got.DailyTotals["2024-03-10"])

	require.Len(t, got.Apps, 3)
	assert.Equal(t, "Editor", got.Apps[0].App)
	assert.InDelta(t, 65.0, got.Apps[0].Percentage, 0.001)
	assert.Equal(t, "Browser", got.Apps[1].App)
	assert.Equal(t, []models.DomainTotal{{Domain: "docs.example", TotalTime: 50}}, got.Apps[1].Domains)
}

func TestMonthly(t *testing.T) {
	got := Monthly(records(), "2024-03")
	assert.Equal(t, "month 2024-03", got.Period)
	assert.Equal(t, []string{"2024-03-10", "2024-03-09"}, got.Dates)
	assert.Equal(t, int64(180), got.TotalTime)

	empty := Monthly(records(), "2023-12")
	assert.Empty(t, empty.Dates)
	assert.Empty(t, empty.Apps)
	assert.Zero(t, empty.AverageDaily)
}

func TestRollupTopN(t *testing.T) {
	var sessions []models.Session
	for i, app := range []string{"a", "b", "c", "d"} {
		sessions = append(sessions, sess(app, "t", "", int64(10*(i+1)), "2024-03-10T09:00:00.000Z"))
	}
	got := Rollup("custom", []models.DayRecord{{Date: "2024-03-10", Sessions: sessions}}, 2)
	require.Len(t, got.Apps, 2)
	assert.Equal(t, "d", got.Apps[0].App)
	assert.Equal(t, "c", got.Apps[1].App)
}
