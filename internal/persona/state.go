package persona

import (
	"errors"
	"time"
)

var (
	// ErrUnknownSession is returned when no coordination state exists for a session.
	ErrUnknownSession = errors.New("persona: unknown session")
	// ErrUnknownPersona is returned when a transition names a persona not in the catalog.
	ErrUnknownPersona = errors.New("persona: unknown persona")
	// ErrAlreadyActive is returned when a transition targets the active persona.
	ErrAlreadyActive = errors.New("persona: persona already active")
)

// Strategy is how personas currently share a session.
type Strategy string

const (
	StrategySingle        Strategy = "single"
	StrategyCollaborative Strategy = "collaborative"
)

// SessionState is the caller-owned coordination state for one session.
// Coordinate reads it; ExecuteTransition returns an updated copy for the
// caller to store.
type SessionState struct {
	SessionID     string             `json:"session_id"`
	UserID        string             `json:"user_id"`
	ActivePersona string             `json:"active_persona"`
	Strategy      Strategy           `json:"strategy"`
	Collaboration *CollaborationPlan `json:"collaboration,omitempty"`
	// LastTransitionTurn is the turn count at the most recent transition;
	// -1 when the session has never transitioned.
	LastTransitionTurn int                `json:"last_transition_turn"`
	Transitions        []TransitionRecord `json:"transitions,omitempty"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// TransitionRecord is one completed handoff.
type TransitionRecord struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Style Style     `json:"style"`
	Turn  int       `json:"turn"`
	At    time.Time `json:"at"`
}

// NewSessionState returns the initial state for a session led by persona.
func NewSessionState(sessionID, userID, persona string, now time.Time) SessionState {
	return SessionState{
		SessionID:          sessionID,
		UserID:             userID,
		ActivePersona:      persona,
		Strategy:           StrategySingle,
		LastTransitionTurn: -1,
		UpdatedAt:          now,
	}
}

// Lookup resolves session state by session ID.
type Lookup interface {
	Get(sessionID string) (SessionState, bool)
}

// States is an in-memory Lookup keyed by session ID.
type States map[string]SessionState

// Get implements Lookup.
func (s States) Get(sessionID string) (SessionState, bool) {
	st, ok := s[sessionID]
	return st, ok
}

// clone returns a deep copy so callers never share slices with a stored state.
func (s SessionState) clone() SessionState {
	out := s
	if s.Transitions != nil {
		out.Transitions = append([]TransitionRecord(nil), s.Transitions...)
	}
	if s.Collaboration != nil {
		c := s.Collaboration.clone()
		out.Collaboration = &c
	}
	return out
}
