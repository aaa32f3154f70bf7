package conversation

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Transcript is the on-disk/over-the-wire form of a conversation used by the
// CLI and HTTP layers.
type Transcript struct {
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	Topic       string `json:"topic,omitempty"`
	DurationSec int    `json:"duration_sec,omitempty"`
	Turns       []Turn `json:"turns"`
}

// DecodeTranscript reads a JSON transcript and normalizes it: missing turn IDs
// are filled in, turns are ordered by timestamp (stable for equal times), and
// unknown senders are rejected.
func DecodeTranscript(r io.Reader) (*Transcript, error) {
	var tr Transcript
	if err := json.NewDecoder(r).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	if err := tr.Normalize(); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Normalize validates senders, assigns IDs and orders turns.
func (tr *Transcript) Normalize() error {
	for i := range tr.Turns {
		t := &tr.Turns[i]
		switch t.Sender {
		case SenderUser, SenderAgent:
		default:
			return fmt.Errorf("turn %d: unknown sender %q", i, t.Sender)
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.Confidence != nil && (*t.Confidence < 0 || *t.Confidence > 1) {
			return fmt.Errorf("turn %d: confidence %.2f out of range", i, *t.Confidence)
		}
	}
	sort.SliceStable(tr.Turns, func(i, j int) bool {
		return tr.Turns[i].Timestamp.Before(tr.Turns[j].Timestamp)
	})
	return nil
}

// Duration returns the declared session duration, falling back to the span
// of the turns.
func (tr *Transcript) Duration() time.Duration {
	if tr.DurationSec > 0 {
		return time.Duration(tr.DurationSec) * time.Second
	}
	return Span(tr.Turns)
}

// NewTurn builds a turn with a fresh ID.
func NewTurn(sender Sender, content string, at time.Time) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Sender:    sender,
		Content:   content,
		Timestamp: at,
	}
}
