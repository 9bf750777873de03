package conflict

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	removedColor   = lipgloss.Color("#EF4444") // Red
	addedColor     = lipgloss.Color("#10B981") // Green
	highlightColor = lipgloss.Color("#F3F4F6") // Light gray
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	markerColor    = lipgloss.Color("#6B7280") // Gray

	RemovedStyle = lipgloss.NewStyle().
			Foreground(removedColor).
			TabWidth(lipgloss.NoTabConversion)

	AddedStyle = lipgloss.NewStyle().
			Foreground(addedColor).
			TabWidth(lipgloss.NoTabConversion)

	// HighlightStyle marks the changed characters of a modified line.
	HighlightStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Background(addedColor).
			TabWidth(lipgloss.NoTabConversion)

	// MarkerStyle renders notes about the diff itself, such as a missing final newline.
	MarkerStyle = lipgloss.NewStyle().
			Foreground(markerColor).
			Italic(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)
)
