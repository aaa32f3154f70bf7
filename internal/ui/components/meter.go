package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/voxtutor/internal/ui/theme"
)

// Meter is a horizontal gauge for a 0..1 score such as engagement.
type Meter struct {
	Label string
	Value float64
	Width int
	// HidePercent drops the trailing percentage.
	HidePercent bool
}

// NewMeter returns a meter width cells wide, label and percentage included.
func NewMeter(label string, value float64, width int) Meter {
	return Meter{Label: label, Value: value, Width: width}
}

// Cells is how many of n cells the value fills.
func (m Meter) Cells(n int) int {
	return min(max(int(float64(n)*m.Value), 0), n)
}

// Color is red below 0.4, amber below 0.7 and green above.
func (m Meter) Color() lipgloss.Style {
	switch {
	case m.Value < 0.4:
		return lipgloss.NewStyle().Foreground(theme.Error)
	case m.Value < 0.7:
		return lipgloss.NewStyle().Foreground(theme.Accent)
	}
	return lipgloss.NewStyle().Foreground(theme.Success)
}

// View renders the meter.
func (m Meter) View() string {
	var prefix, suffix string
	if m.Label != "" {
		prefix = theme.Body.Render(m.Label) + " "
	}
	if !m.HidePercent {
		suffix = theme.Hint.Render(fmt.Sprintf(" %3d%%", int(m.Value*100)))
	}
	n := max(m.Width-lipgloss.Width(prefix)-lipgloss.Width(suffix), 4)
	filled := m.Cells(n)
	gauge := m.Color().Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", n-filled))
	return prefix + gauge + suffix
}
