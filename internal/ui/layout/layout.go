// Package layout arranges the console screen: a header bar, the transcript
// beside an engagement panel, and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/voxtutor/internal/ui/theme"
)

const (
	MinWidth  = 72
	MinHeight = 20

	// SidePanelWidth is the width of the engagement panel beside the transcript.
	SidePanelWidth = 32
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether the terminal cannot fit the console.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("The console needs %dx%d.\nThis terminal is %dx%d.", MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Body.Render(msg))
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
}

// RenderHeader shows the product name with the speaking persona, and the
// current topic flush right.
func RenderHeader(persona, topic string, width int) string {
	left := theme.Title.Render("VoxTutor")
	if persona != "" {
		left += theme.Hint.Render("  with ") + theme.Tutor.Render(persona)
	}
	right := ""
	if topic != "" {
		right = lipgloss.NewStyle().Foreground(theme.Accent).Render("topic: " + topic)
	}
	// Border and padding take four columns.
	gap := max(width-4-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return bar(width).Render(left + strings.Repeat(" ", gap) + right)
}

// RenderFooter lists key hints.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = theme.Label.Render(h.Key) + " " + theme.Hint.Render(h.Description)
	}
	return bar(width).Render(strings.Join(parts, theme.Hint.Render("  ·  ")))
}

// SplitColumns puts main and a SidePanelWidth side panel next to each other.
func SplitColumns(main, side func(width, height int) string, width, height int) string {
	mainWidth := max(width-SidePanelWidth-1, 20)
	return lipgloss.JoinHorizontal(lipgloss.Top, main(mainWidth, height), " ", side(SidePanelWidth, height))
}

// ContentHeight is the height left between header and footer.
func ContentHeight(header, footer string, height int) int {
	return max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
}

// RenderFrame stacks header, content and footer, padding content so the
// frame fills height.
func RenderFrame(header, content, footer string, width, height int) string {
	body := lipgloss.NewStyle().
		Width(width).
		Height(ContentHeight(header, footer, height)).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
