package persona

import (
	"fmt"
	"strings"
	"time"
)

// Style is how a handoff is presented to the learner.
type Style string

const (
	// StyleSmooth hands over without announcing it.
	StyleSmooth Style = "smooth"
	// StyleExplicit announces the new persona with a short message.
	StyleExplicit Style = "explicit"
)

// ParseStyle parses "smooth" or "explicit"; an empty string means smooth.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleSmooth, "":
		return StyleSmooth, nil
	case StyleExplicit:
		return StyleExplicit, nil
	}
	return "", fmt.Errorf("unknown transition style %q (want smooth or explicit)", s)
}

// Transition is the outcome of a handoff.
type Transition struct {
	From    string       `json:"from"`
	To      string       `json:"to"`
	Style   Style        `json:"style"`
	Message string       `json:"message,omitempty"`
	State   SessionState `json:"state"`
}

// ExecuteTransition hands sessionID over to target with the default catalog.
func ExecuteTransition(states Lookup, sessionID, target string, style Style, turn int, now time.Time) (Transition, error) {
	return defaultCoordinator.ExecuteTransition(states, sessionID, target, style, turn, now)
}

// ExecuteTransition hands the session over to target. turn is the number of
// turns in the conversation so far and starts the transition cooldown. The
// returned state is a new value; the caller stores it.
func (c *Coordinator) ExecuteTransition(states Lookup, sessionID, target string, style Style, turn int, now time.Time) (Transition, error) {
	st, ok := states.Get(sessionID)
	if !ok {
		return Transition{}, fmt.Errorf("transition %q: %w", sessionID, ErrUnknownSession)
	}
	to, ok := c.Catalog.Get(target)
	if !ok {
		return Transition{}, fmt.Errorf("transition %q to %q: %w", sessionID, target, ErrUnknownPersona)
	}
	if st.ActivePersona == target {
		return Transition{}, fmt.Errorf("transition %q to %q: %w", sessionID, target, ErrAlreadyActive)
	}
	if style == "" {
		style = StyleSmooth
	}

	next := st.clone()
	next.ActivePersona = target
	next.Strategy = StrategySingle
	next.Collaboration = nil
	next.LastTransitionTurn = turn
	next.Transitions = append(next.Transitions, TransitionRecord{
		From:  st.ActivePersona,
		To:    target,
		Style: style,
		Turn:  turn,
		At:    now,
	})
	next.UpdatedAt = now

	tr := Transition{From: st.ActivePersona, To: target, Style: style, State: next}
	if style == StyleExplicit {
		tr.Message = c.announcement(st.ActivePersona, to)
	}
	return tr, nil
}

// ApplyCollaboration returns a copy of st running the given collaboration.
// The active persona is unchanged.
func ApplyCollaboration(st SessionState, plan CollaborationPlan, now time.Time) SessionState {
	next := st.clone()
	p := plan.clone()
	next.Strategy = StrategyCollaborative
	next.Collaboration = &p
	next.UpdatedAt = now
	return next
}

func (c *Coordinator) announcement(fromID string, to Persona) string {
	if from, ok := c.Catalog.Get(fromID); ok {
		return fmt.Sprintf("%s here. I'm handing you over to %s, who %s.", from.Name, to.Name, to.Intro)
	}
	return fmt.Sprintf("Let me introduce %s, who %s.", to.Name, to.Intro)
}
