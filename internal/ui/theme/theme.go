package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette. Calm tones; warm accents are reserved for alerts.
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Transcript speakers
var (
	Tutor = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Learner = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
)

// Panels
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// RiskColor maps a risk or urgency label to a display color.
func RiskColor(level string) lipgloss.Style {
	switch level {
	case "high":
		return lipgloss.NewStyle().Foreground(Error).Bold(true)
	case "medium":
		return lipgloss.NewStyle().Foreground(Accent).Bold(true)
	case "low":
		return lipgloss.NewStyle().Foreground(Success)
	}
	return lipgloss.NewStyle().Foreground(TextDim)
}
