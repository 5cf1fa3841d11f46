package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Colours follow the terminal UI palette.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colourPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(colourMuted)
	successStyle = lipgloss.NewStyle().Foreground(colourSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colourWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colourError)
	idStyle      = lipgloss.NewStyle().Width(14).Foreground(colourMuted)
	titleStyle   = lipgloss.NewStyle().Width(36)
	columnStyle  = lipgloss.NewStyle().Width(12)
)

func heading(s string) string { return headingStyle.Render(s) }

func muted(s string) string { return mutedStyle.Render(s) }

func success(s string) string { return successStyle.Render(s) }

func warning(s string) string { return warningStyle.Render(s) }

func failure(s string) string { return errorStyle.Render(s) }

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
