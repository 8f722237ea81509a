package tui

import "github.com/charmbracelet/lipgloss"

var (
	text     = lipgloss.Color("#cdd6f4")
	subtext  = lipgloss.Color("#a6adc8")
	surface  = lipgloss.Color("#45475a")
	sapphire = lipgloss.Color("#74c7ec")
	green    = lipgloss.Color("#a6e3a1")
	peach    = lipgloss.Color("#fab387")

	paneStyle = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(surface).Foreground(text).Padding(0, 1)

	titleStyle   = lipgloss.NewStyle().Foreground(sapphire).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(subtext)
	elapsedStyle = lipgloss.NewStyle().Foreground(peach).Bold(true)
	barStyle     = lipgloss.NewStyle().Foreground(green)
)
