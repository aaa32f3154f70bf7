package engagement

import (
	"fmt"
	"time"

	"github.com/abhisek/voxtutor/internal/conversation"
)

// DetectPatterns scans a turn window for disengagement patterns using the
// default thresholds.
func DetectPatterns(turns []conversation.Turn) []PatternMatch {
	return DefaultWeights().DetectPatterns(turns)
}

// DetectPatterns scans a turn window for the five disengagement patterns.
// Each pattern is evaluated independently; a pattern whose minimum sample is
// not met is skipped rather than reported as absent. The result is never nil.
func (w Weights) DetectPatterns(turns []conversation.Turn) []PatternMatch {
	p := w.Patterns
	users := conversation.UserTurns(turns)
	out := []PatternMatch{}

	if len(users) >= p.MinSample {
		counts := make([]float64, len(users))
		for i, t := range users {
			counts[i] = float64(t.WordCount())
		}
		first, second := halves(counts)
		if first > 0 && second < p.VerbosityDropRatio*first {
			out = append(out, PatternMatch{
				Pattern:     PatternDecreasingVerbosity,
				Confidence:  p.VerbosityConfidence,
				Description: fmt.Sprintf("Responses shrank from %.1f to %.1f words on average", first, second),
			})
		}
	}

	gaps := conversation.ResponseGaps(turns)
	if len(gaps) >= p.MinSample {
		ms := make([]float64, len(gaps))
		for i, g := range gaps {
			ms[i] = float64(g / time.Millisecond)
		}
		first, second := halves(ms)
		if second > first && second > p.LatencyRiseRatio*first {
			out = append(out, PatternMatch{
				Pattern:     PatternIncreasingLatency,
				Confidence:  p.LatencyConfidence,
				Description: fmt.Sprintf("Response time rose from %.0fms to %.0fms on average", first, second),
			})
		}
	}

	if len(users) >= p.MinSample {
		window := users
		if len(window) > p.MinimalWindow {
			window = window[len(window)-p.MinimalWindow:]
		}
		var minimal int
		for _, t := range window {
			if t.WordCount() <= p.MinimalWords {
				minimal++
			}
		}
		if share := float64(minimal) / float64(len(window)); share >= p.MinimalShare {
			out = append(out, PatternMatch{
				Pattern:     PatternMinimalResponses,
				Confidence:  p.MinimalConfidence,
				Description: fmt.Sprintf("%d of the last %d responses were %d words or fewer", minimal, len(window), p.MinimalWords),
			})
		}
	}

	if conf := conversation.Confidences(turns); len(conf) >= p.MinSample {
		first, second := halves(conf)
		if first > 0 && second < p.ConfidenceDropRatio*first {
			out = append(out, PatternMatch{
				Pattern:     PatternDecliningConfidence,
				Confidence:  p.ConfidenceConfidence,
				Description: fmt.Sprintf("Speech confidence fell from %.2f to %.2f", first, second),
			})
		}
	}

	if len(users) >= 1 {
		var hits int
		for _, t := range users {
			if len(matchFrustration(t.Content)) > 0 {
				hits++
			}
		}
		if hits > 0 {
			out = append(out, PatternMatch{
				Pattern:     PatternFrustration,
				Confidence:  p.FrustrationConfidence,
				Description: fmt.Sprintf("Frustration language in %d of %d responses", hits, len(users)),
			})
		}
	}

	return out
}

// halves returns the mean of the first and second half of vals. With an odd
// length the middle element belongs to the second half.
func halves(vals []float64) (first, second float64) {
	mid := len(vals) / 2
	return mean(vals[:mid]), mean(vals[mid:])
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
