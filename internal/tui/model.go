// Package tui renders the live session and today's totals in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/actionsum/focusday/internal/models"
	"github.com/actionsum/focusday/pkg/utils"
)

const (
	refreshEvery = 5 * time.Second
	topApps      = 8
	barWidth     = 20
)

// StatsSource provides today's totals.
type StatsSource interface {
	GetTodayStats(ctx context.Context) models.AppStats
}

// ProgressMsg carries one sampler update.
type ProgressMsg models.Progress

// StatsMsg carries refreshed totals.
type StatsMsg struct {
	Stats models.AppStats
}

type refreshMsg struct{}

type Model struct {
	source   StatsSource
	progress *models.Progress
	stats    models.AppStats
	width    int
}

func New(source StatsSource) Model {
	return Model{source: source, stats: models.AppStats{}}
}

func (m Model) Init() tea.Cmd {
	return m.fetchStats()
}

func (m Model) fetchStats() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		return StatsMsg{Stats: source.GetTodayStats(context.Background())}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshEvery, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.fetchStats()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case ProgressMsg:
		p := models.Progress(msg)
		m.progress = &p
	case StatsMsg:
		m.stats = msg.Stats
		return m, scheduleRefresh()
	case refreshMsg:
		return m, m.fetchStats()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("focusday") + mutedStyle.Render("  q quit, r refresh") + "\n\n")

	if m.progress == nil {
		b.WriteString(paneStyle.Render(mutedStyle.Render("Waiting for the first sample...")))
	} else {
		current := m.progress.App
		if m.progress.Domain != nil {
			current += " / " + *m.progress.Domain
		}
		line := fmt.Sprintf("%s\n%s  %s", current, mutedStyle.Render(m.progress.Title),
			elapsedStyle.Render(utils.FormatDuration(m.progress.Elapsed)))
		b.WriteString(paneStyle.Render(line))
	}
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Today") + "\n")
	b.WriteString(m.renderStats())
	return b.String()
}

func (m Model) renderStats() string {
	if len(m.stats) == 0 {
		return mutedStyle.Render("No sessions recorded yet.") + "\n"
	}

	type row struct {
		app   string
		total int64
	}
	rows := make([]row, 0, len(m.stats))
	var peak, sum int64
	for app, usage := range m.stats {
		rows = append(rows, row{app, usage.TotalTime})
		sum += usage.TotalTime
		if usage.TotalTime > peak {
			peak = usage.TotalTime
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		return rows[i].app < rows[j].app
	})
	if len(rows) > topApps {
		rows = rows[:topApps]
	}

	var b strings.Builder
	for _, r := range rows {
		filled := 0
		if peak > 0 {
			filled = int(r.total * barWidth / peak)
		}
		fmt.Fprintf(&b, "%-24.24s %s%s %6s\n", r.app,
			barStyle.Render(strings.Repeat("█", filled)),
			strings.Repeat(" ", barWidth-filled),
			utils.FormatRoundedUnit(r.total))
	}
	b.WriteString(mutedStyle.Render("Total " + utils.FormatDuration(sum)))
	b.WriteString("\n")
	return b.String()
}

// Run shows the live view until the user quits or ctx is done. Updates
// received on progress are forwarded to the view.
func Run(ctx context.Context, source StatsSource, progress <-chan models.Progress) error {
	program := tea.NewProgram(New(source), tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-progress:
				if !ok {
					return
				}
				program.Send(ProgressMsg(p))
			}
		}
	}()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
