package engagement

import (
	"math"
	"sort"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/learner"
)

// ExtractSignals computes the engagement signals for a turn window using the
// default weights.
func ExtractSignals(turns []conversation.Turn, sessionDurationSec int, profile *learner.Profile) Signals {
	return DefaultWeights().ExtractSignals(turns, sessionDurationSec, profile)
}

// ExtractSignals computes the engagement signals for a turn window. The
// profile is accepted for symmetry with Score; extraction itself does not
// depend on the learner.
func (w Weights) ExtractSignals(turns []conversation.Turn, sessionDurationSec int, _ *learner.Profile) Signals {
	users := conversation.UserTurns(turns)
	return Signals{
		ResponseLatencyMs:     w.responseLatency(turns),
		MessageComplexity:     w.messageComplexity(users),
		EmotionalTone:         emotionalTone(users),
		ParticipationLevel:    w.participation(turns, users, sessionDurationSec),
		FrustrationIndicators: frustrationIndicators(users),
		ConfidenceLevel:       w.confidence(turns),
	}
}

func (w Weights) responseLatency(turns []conversation.Turn) float64 {
	gaps := conversation.ResponseGaps(turns)
	if len(gaps) == 0 {
		return w.DefaultLatencyMs
	}
	var sum float64
	for _, g := range gaps {
		sum += float64(g.Milliseconds())
	}
	return sum / float64(len(gaps))
}

func (w Weights) messageComplexity(users []conversation.Turn) float64 {
	if len(users) == 0 {
		return 0
	}
	var total float64
	for _, t := range users {
		total += w.turnComplexity(t.Words())
	}
	return clamp(total/float64(len(users)), 0, 1)
}

// turnComplexity is the mean of word-count, uniqueness and word-length
// sub-scores, each in [0,1].
func (w Weights) turnComplexity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	var letters int
	for _, word := range words {
		unique[word] = struct{}{}
		letters += len([]rune(word))
	}
	countScore := math.Min(float64(len(words))/w.WordCountCap, 1)
	uniqueScore := float64(len(unique)) / float64(len(words))
	lengthScore := math.Min(float64(letters)/float64(len(words))/w.WordLengthCap, 1)
	return (countScore + uniqueScore + lengthScore) / 3
}

func emotionalTone(users []conversation.Turn) Tone {
	var pos, neg int
	for _, t := range users {
		p, n := toneCounts(t.Words())
		pos += p
		neg += n
	}
	switch {
	case pos > neg:
		return TonePositive
	case neg > pos:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

func (w Weights) participation(turns, users []conversation.Turn, sessionDurationSec int) Participation {
	if len(users) == 0 {
		return ParticipationLow
	}
	minutes := float64(sessionDurationSec) / 60
	if minutes <= 0 {
		minutes = conversation.Span(turns).Minutes()
	}
	if minutes <= 0 {
		minutes = 1
	}
	var words int
	for _, t := range users {
		words += t.WordCount()
	}
	perMinute := float64(len(users)) / minutes
	perMessage := float64(words) / float64(len(users))

	switch {
	case perMinute > w.HighMessagesPerMinute && perMessage > w.HighWordsPerMessage:
		return ParticipationHigh
	case perMinute > w.MediumMessagesPerMinute && perMessage > w.MediumWordsPerMessage:
		return ParticipationMedium
	default:
		return ParticipationLow
	}
}

// frustrationIndicators returns the distinct indicator labels matched across
// learner turns, sorted.
func frustrationIndicators(users []conversation.Turn) []string {
	seen := make(map[string]bool)
	for _, t := range users {
		for _, label := range matchFrustration(t.Content) {
			seen[label] = true
		}
	}
	out := make([]string, 0, len(seen))
	for label := range seen {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

func (w Weights) confidence(turns []conversation.Turn) float64 {
	vals := conversation.Confidences(turns)
	if len(vals) == 0 {
		return w.DefaultConfidence
	}
	var sum float64
	for _, v := range vals {
		sum += clamp(v, 0, 1)
	}
	return sum / float64(len(vals))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
