package console

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/ui/components"
	"github.com/abhisek/voxtutor/internal/ui/layout"
	"github.com/abhisek/voxtutor/internal/ui/theme"
)

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader(m.personaName(), m.opts.Topic, m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)
	content := layout.SplitColumns(m.renderConversation, m.renderPanel, m.width, layout.ContentHeight(header, footer, m.height))

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m *Model) keyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+P", Description: "Plan"},
		{Key: "Esc", Description: "Finish"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m *Model) personaName() string {
	if p, ok := m.catalog.Get(m.state.ActivePersona); ok {
		return p.Name
	}
	return m.state.ActivePersona
}

// renderConversation renders the tail of the transcript that fits above the
// input line.
func (m *Model) renderConversation(width, height int) string {
	lines := make([]string, 0, len(m.turns))
	wrap := lipgloss.NewStyle().Width(width - 2)
	for _, t := range m.turns {
		speaker := theme.Tutor.Render(m.personaName() + ":")
		if t.Sender == conversation.SenderUser {
			speaker = theme.Learner.Render("You:")
		}
		lines = append(lines, wrap.Render(speaker+" "+theme.Body.Render(t.Content)))
	}

	var status string
	switch {
	case m.errMsg != "":
		status = theme.ErrorText.Render("error: " + m.errMsg)
	case m.busy:
		status = theme.Hint.Render("thinking...")
	}

	bottom := m.input.View()
	if status != "" {
		bottom = status + "\n" + bottom
	}

	avail := max(height-lipgloss.Height(bottom)-1, 0)
	body := strings.Join(lines, "\n")
	if h := lipgloss.Height(body); h > avail {
		all := strings.Split(body, "\n")
		body = strings.Join(all[h-avail:], "\n")
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Render(lipgloss.PlaceVertical(max(height-lipgloss.Height(bottom), 0), lipgloss.Bottom, body) + "\n" + bottom)
}

// renderPanel shows the latest engagement analysis and plan.
func (m *Model) renderPanel(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Engagement") + "\n")

	if m.last == nil {
		b.WriteString(theme.Hint.Render("No turns analysed yet.") + "\n")
	} else {
		an := m.last.Analysis
		b.WriteString(components.NewMeter("", an.OverallEngagement, width-4).View() + "\n")
		b.WriteString(theme.Label.Render("risk     ") + theme.RiskColor(string(an.RiskLevel)).Render(string(an.RiskLevel)) + "\n")
		b.WriteString(theme.Label.Render("urgency  ") + theme.RiskColor(string(an.InterventionUrgency)).Render(string(an.InterventionUrgency)) + "\n")
		b.WriteString(theme.Label.Render("tone     ") + theme.Body.Render(string(an.Signals.EmotionalTone)) + "\n")
		if len(an.DetectedPatterns) > 0 {
			b.WriteString("\n" + theme.Title.Render("Patterns") + "\n")
			for _, p := range an.DetectedPatterns {
				b.WriteString(theme.Body.Render("• "+strings.ReplaceAll(p, "_", " ")) + "\n")
			}
		}
		if m.last.Trend.Sessions > 0 {
			b.WriteString("\n" + theme.Label.Render("trend    ") + theme.Body.Render(string(m.last.Trend.Trend)) + "\n")
		}
	}

	if m.plan != nil {
		b.WriteString("\n" + theme.Title.Render("Plan") + "\n")
		b.WriteString(theme.Label.Render("level    ") + theme.Body.Render(m.plan.Difficulty.RecommendedDifficulty.DisplayName()) + "\n")
		b.WriteString(theme.Label.Render("minutes  ") + theme.Body.Render(fmt.Sprintf("%d", m.plan.Topic.EstimatedDurationMinutes)) + "\n")
		b.WriteString(theme.Label.Render("decision ") + theme.Body.Render(string(m.plan.Decision.Action)) + "\n")
	}

	return theme.Card.
		Width(width).
		Height(max(height-2, 0)).
		Render(strings.TrimRight(b.String(), "\n"))
}
