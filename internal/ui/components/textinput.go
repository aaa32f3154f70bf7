package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// ReplyInput is the single-line box the learner types replies into.
type ReplyInput struct {
	Model textinput.Model
}

// NewReplyInput returns a focused input. limit caps the reply length in
// characters; zero keeps the bubbles default.
func NewReplyInput(placeholder string, limit int) ReplyInput {
	m := textinput.New()
	m.Prompt = "› "
	m.Placeholder = placeholder
	if limit > 0 {
		m.CharLimit = limit
	}
	m.Focus()
	return ReplyInput{Model: m}
}

// Update forwards msg to the underlying input.
func (r ReplyInput) Update(msg tea.Msg) (ReplyInput, tea.Cmd) {
	var cmd tea.Cmd
	r.Model, cmd = r.Model.Update(msg)
	return r, cmd
}

func (r ReplyInput) View() string { return r.Model.View() }

// Take returns the trimmed reply and clears the box. ok is false for a
// blank reply, which is left in place.
func (r *ReplyInput) Take() (reply string, ok bool) {
	reply = strings.TrimSpace(r.Model.Value())
	if reply == "" {
		return "", false
	}
	r.Model.Reset()
	return reply, true
}
