package conversation

import (
	"strings"
	"time"
	"unicode"
)

// Sender identifies who produced a turn.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Turn is a single utterance in a tutoring conversation. Turns are immutable
// once appended to a session's history; the decision packages only read them.
type Turn struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Confidence is the speech-to-text confidence for the turn (0.0–1.0).
	// Nil when the transcript carried no confidence value.
	Confidence *float64 `json:"confidence,omitempty"`
}

// IsUser reports whether the turn was spoken by the learner.
func (t Turn) IsUser() bool { return t.Sender == SenderUser }

// IsAgent reports whether the turn was spoken by the tutor.
func (t Turn) IsAgent() bool { return t.Sender == SenderAgent }

// Words splits the turn content into lower-cased words with surrounding
// punctuation removed. Apostrophes inside words are kept ("don't").
func (t Turn) Words() []string {
	return Words(t.Content)
}

// WordCount returns the number of words in the turn.
func (t Turn) WordCount() int {
	return len(t.Words())
}

// Words splits text into lower-cased words with surrounding punctuation removed.
func Words(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// UserTurns returns the learner turns in order.
func UserTurns(turns []Turn) []Turn {
	var out []Turn
	for _, t := range turns {
		if t.IsUser() {
			out = append(out, t)
		}
	}
	return out
}

// ResponseGaps returns, in order, the delay between each agent turn and the
// learner turn that immediately follows it. Negative gaps (clock skew) are
// dropped.
func ResponseGaps(turns []Turn) []time.Duration {
	var gaps []time.Duration
	for i := 1; i < len(turns); i++ {
		prev, cur := turns[i-1], turns[i]
		if !prev.IsAgent() || !cur.IsUser() {
			continue
		}
		gap := cur.Timestamp.Sub(prev.Timestamp)
		if gap < 0 {
			continue
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

// Confidences returns the confidence values present on learner turns, in order.
func Confidences(turns []Turn) []float64 {
	var out []float64
	for _, t := range turns {
		if t.IsUser() && t.Confidence != nil {
			out = append(out, *t.Confidence)
		}
	}
	return out
}

// Span returns the wall-clock time between the first and last turn.
func Span(turns []Turn) time.Duration {
	if len(turns) < 2 {
		return 0
	}
	d := turns[len(turns)-1].Timestamp.Sub(turns[0].Timestamp)
	if d < 0 {
		return 0
	}
	return d
}

// Float returns a pointer to v. Convenient for building turns with a
// confidence value.
func Float(v float64) *float64 { return &v }
