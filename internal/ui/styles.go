package ui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7C3AED")
	mutedColor   = lipgloss.Color("#6B7280")
)

var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)
