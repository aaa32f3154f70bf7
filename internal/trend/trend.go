// Package trend classifies a learner's multi-session performance trend.
package trend

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/abhisek/voxtutor/internal/learner"
)

// Direction is the classified trend.
type Direction string

const (
	Improving Direction = "improving"
	Stable    Direction = "stable"
	Declining Direction = "declining"
)

// Timeframe bounds which sessions are considered.
type Timeframe string

const (
	Week  Timeframe = "week"
	Month Timeframe = "month"
	All   Timeframe = "all"
)

// ParseTimeframe parses "week", "month" or "all" (case-insensitive). An empty
// string means all.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(strings.ToLower(strings.TrimSpace(s))) {
	case Week:
		return Week, nil
	case Month:
		return Month, nil
	case All, "":
		return All, nil
	}
	return "", fmt.Errorf("unknown timeframe %q (want week, month or all)", s)
}

// Cutoff returns the earliest session start included by the timeframe. The
// zero time means no cutoff.
func (tf Timeframe) Cutoff(now time.Time) time.Time {
	switch tf {
	case Week:
		return now.AddDate(0, 0, -7)
	case Month:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

const (
	// ChangeThreshold is the half-over-half mean change (in score points)
	// needed to call a trend improving or declining.
	ChangeThreshold = 5.0

	// ConfidenceFloor and ConfidenceCeiling bound the trend confidence.
	ConfidenceFloor   = 0.3
	ConfidenceCeiling = 0.95

	// spreadScale converts the score standard deviation into a confidence
	// penalty: a deviation of 50 points means no confidence at all.
	spreadScale = 50.0

	// BaselineConfidence is reported when there are too few sessions.
	BaselineConfidence = 0.5

	// weakMetricThreshold is the mean accuracy below which a skill is called out.
	weakMetricThreshold = 0.6
)

// Result is the outcome of a trend analysis.
type Result struct {
	Trend           Direction `json:"trend"`
	Confidence      float64   `json:"confidence"`
	Recommendations []string  `json:"recommendations"`
	Sessions        int       `json:"sessions"`
	FirstHalfMean   float64   `json:"first_half_mean"`
	SecondHalfMean  float64   `json:"second_half_mean"`
	Change          float64   `json:"change"`
}

// Analyze classifies the performance trend across sessions that started at or
// after the timeframe cutoff relative to now. The input is not modified.
func Analyze(history []learner.SessionRecord, tf Timeframe, now time.Time) Result {
	cutoff := tf.Cutoff(now)
	sessions := make([]learner.SessionRecord, 0, len(history))
	for _, s := range history {
		if !cutoff.IsZero() && s.StartedAt.Before(cutoff) {
			continue
		}
		sessions = append(sessions, s)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})

	if len(sessions) < 2 {
		return Result{
			Trend:           Stable,
			Confidence:      BaselineConfidence,
			Recommendations: []string{"Complete a few more sessions to establish a performance baseline."},
			Sessions:        len(sessions),
		}
	}

	scores := make([]float64, len(sessions))
	for i, s := range sessions {
		scores[i] = s.Metrics.PerformanceScore()
	}
	mid := len(scores) / 2
	first, second := mean(scores[:mid]), mean(scores[mid:])
	change := second - first

	dir := Stable
	switch {
	case change > ChangeThreshold:
		dir = Improving
	case change < -ChangeThreshold:
		dir = Declining
	}

	return Result{
		Trend:           dir,
		Confidence:      clamp(1-stddev(scores)/spreadScale, ConfidenceFloor, ConfidenceCeiling),
		Recommendations: recommendations(dir, sessions),
		Sessions:        len(sessions),
		FirstHalfMean:   first,
		SecondHalfMean:  second,
		Change:          change,
	}
}

func recommendations(dir Direction, sessions []learner.SessionRecord) []string {
	var out []string
	switch dir {
	case Improving:
		out = append(out,
			"Performance is improving; consider raising the difficulty.",
			"Introduce new topics to keep the momentum going.")
	case Declining:
		out = append(out,
			"Performance is slipping; review recent material before moving on.",
			"Try shorter sessions focused on one skill at a time.")
	default:
		out = append(out, "Performance is steady; vary topics or add a small challenge to keep progressing.")
	}

	var grammar, fluency float64
	for _, s := range sessions {
		grammar += s.Metrics.GrammarAccuracy
		fluency += s.Metrics.FluencyScore
	}
	grammar /= float64(len(sessions))
	fluency /= float64(len(sessions))
	if grammar < weakMetricThreshold && grammar <= fluency {
		out = append(out, "Grammar accuracy is the weakest area; add targeted grammar practice.")
	} else if fluency < weakMetricThreshold {
		out = append(out, "Fluency is the weakest area; add open-ended speaking practice.")
	}
	return out
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

// stddev is the population standard deviation.
func stddev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(vals)))
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
