package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/trend"
)

// Strength is how forceful a difficulty adjustment is.
type Strength string

const (
	StrengthMinor    Strength = "minor"
	StrengthModerate Strength = "moderate"
	StrengthMajor    Strength = "major"
)

// Performance is the performance evidence for a difficulty decision.
type Performance struct {
	// Current is the running session's metrics. When zero, the latest
	// session in History is used instead.
	Current learner.SessionMetrics
	History []learner.SessionRecord
	// Now anchors the trend timeframe. Zero means no cutoff.
	Now time.Time
}

// DifficultyAdjustment is the planner's difficulty recommendation.
type DifficultyAdjustment struct {
	CurrentDifficulty     learner.Level   `json:"current_difficulty"`
	RecommendedDifficulty learner.Level   `json:"recommended_difficulty"`
	Reason                string          `json:"reason"`
	Strength              Strength        `json:"strength"`
	Trend                 trend.Direction `json:"trend"`
	StruggleAreas         []string        `json:"struggle_areas"`
	Fatigue               float64         `json:"fatigue"`
}

// AdjustDifficulty recommends a difficulty with the default weights.
func AdjustDifficulty(profile *learner.Profile, recentTurns []conversation.Turn, perf Performance) DifficultyAdjustment {
	return defaultPlanner.AdjustDifficulty(profile, recentTurns, perf)
}

// AdjustDifficulty combines the performance trend, struggle areas and a
// fatigue estimate into a recommendation. The recommended level is never more
// than one step from the current level.
func (p *Planner) AdjustDifficulty(profile *learner.Profile, recentTurns []conversation.Turn, perf Performance) DifficultyAdjustment {
	w := p.Weights
	current := profile.Level()
	tr := trend.Analyze(perf.History, trend.All, perf.Now)
	metrics := currentMetrics(perf)
	struggles := p.struggleAreas(metrics)
	fatigue := p.fatigue(metrics, recentTurns)
	tired := fatigue >= w.HighFatigue

	adj := DifficultyAdjustment{
		CurrentDifficulty: current,
		Trend:             tr.Trend,
		StruggleAreas:     struggles,
		Fatigue:           fatigue,
	}

	switch {
	case tr.Trend == trend.Declining && len(struggles) > w.MaxStruggleAreas:
		adj.RecommendedDifficulty = current.Prev()
		adj.Strength = StrengthMajor
		adj.Reason = fmt.Sprintf("Performance is declining and the learner is struggling with %s.", strings.Join(struggles, ", "))
	case tr.Trend == trend.Improving && len(struggles) == 0 && !tired:
		adj.RecommendedDifficulty = current.Next()
		adj.Strength = StrengthModerate
		adj.Reason = "Performance is improving with no struggle areas; ready for more challenge."
	case tr.Trend == trend.Declining:
		adj.RecommendedDifficulty = current.Prev()
		adj.Strength = StrengthModerate
		adj.Reason = "Performance is declining; step back to consolidate."
	case len(struggles) > w.MaxStruggleAreas:
		adj.RecommendedDifficulty = current.Prev()
		adj.Strength = StrengthModerate
		adj.Reason = fmt.Sprintf("Struggling in several areas (%s); step back to consolidate.", strings.Join(struggles, ", "))
	case tired:
		adj.RecommendedDifficulty = current.Prev()
		adj.Strength = StrengthMinor
		adj.Reason = fmt.Sprintf("Signs of fatigue (%.0f%%); ease off slightly.", fatigue*100)
	default:
		adj.RecommendedDifficulty = current
		adj.Strength = StrengthMinor
		adj.Reason = "Performance is steady; keep the current level."
	}

	if adj.RecommendedDifficulty == current && adj.Strength != StrengthMinor {
		adj.Reason += fmt.Sprintf(" Already at %s.", current.DisplayName())
	}
	return adj
}

func currentMetrics(perf Performance) learner.SessionMetrics {
	m := perf.Current
	if m.DurationSec > 0 || m.WordsSpoken > 0 || m.GrammarAccuracy > 0 || m.FluencyScore > 0 || len(m.ErrorCategories) > 0 {
		return m
	}
	if len(perf.History) == 0 {
		return learner.SessionMetrics{}
	}
	sorted := sortedHistory(perf.History)
	return sorted[len(sorted)-1].Metrics
}

// struggleAreas lists skills below the struggle threshold, then error
// categories with at least the threshold count, sorted by name.
func (p *Planner) struggleAreas(m learner.SessionMetrics) []string {
	w := p.Weights
	out := []string{}
	measured := m.GrammarAccuracy > 0 || m.FluencyScore > 0
	if measured && m.GrammarAccuracy < w.StruggleThreshold {
		out = append(out, "grammar")
	}
	if measured && m.FluencyScore < w.StruggleThreshold {
		out = append(out, "fluency")
	}
	var cats []string
	for name, n := range m.ErrorCategories {
		if n >= w.ErrorCategoryThreshold && name != "grammar" && name != "fluency" {
			cats = append(cats, name)
		}
	}
	sort.Strings(cats)
	return append(out, cats...)
}

// fatigue is the larger of the session-length component and the response
// slowdown across the recent turns, both in [0,1].
func (p *Planner) fatigue(m learner.SessionMetrics, turns []conversation.Turn) float64 {
	length := clamp(float64(m.DurationSec)/60/p.Weights.FatigueSessionMinutes, 0, 1)

	var slowdown float64
	gaps := conversation.ResponseGaps(turns)
	if len(gaps) >= 2 {
		mid := len(gaps) / 2
		first, second := meanGap(gaps[:mid]), meanGap(gaps[mid:])
		if first > 0 {
			slowdown = clamp(second/first-1, 0, 1)
		}
	}
	if slowdown > length {
		return slowdown
	}
	return length
}

func meanGap(gaps []time.Duration) float64 {
	if len(gaps) == 0 {
		return 0
	}
	var sum time.Duration
	for _, g := range gaps {
		sum += g
	}
	return float64(sum) / float64(len(gaps))
}
