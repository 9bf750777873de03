package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	mutedColor   = lipgloss.Color("#6B7280") // Gray

	// LabelStyle renders the name being asked for
	LabelStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	// AnswerStyle renders an accepted answer once the prompt is done
	AnswerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)
