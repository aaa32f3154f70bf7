// Package planner recommends the next topic, difficulty level and
// continuation prompt for a tutoring session.
package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/voxtutor/internal/learner"
)

// TopicRecommendation is the planner's choice of what to talk about next.
type TopicRecommendation struct {
	Topic                    string        `json:"topic"`
	Difficulty               learner.Level `json:"difficulty"`
	Reason                   string        `json:"reason"`
	Confidence               float64       `json:"confidence"`
	EstimatedDurationMinutes int           `json:"estimated_duration_minutes"`
	Fallback                 bool          `json:"fallback"`
}

// Planner holds the weights and catalog used for recommendations. It has no
// mutable state.
type Planner struct {
	Weights Weights
	Catalog Catalog
}

// New returns a planner with the given weights and the default catalog.
func New(w Weights) *Planner {
	return &Planner{Weights: w, Catalog: DefaultCatalog()}
}

var defaultPlanner = New(DefaultWeights())

// SelectTopic recommends a topic with the default weights and catalog.
func SelectTopic(profile *learner.Profile, history []learner.SessionRecord, currentEngagement float64, tod TimeOfDay) TopicRecommendation {
	return defaultPlanner.SelectTopic(profile, history, currentEngagement, tod)
}

// topicScore is a candidate topic's weighted score and what contributed.
type topicScore struct {
	topic   string
	score   float64
	reasons []string
}

// SelectTopic scores every candidate topic from four weighted sources: past
// performance on the topic, time-of-day affinity, membership in the
// engagement-adjusted candidate set and stated preference. Topics covered in
// the most recent sessions are excluded. With no history, or when nothing
// scores above zero, a level-appropriate fallback topic is returned.
func (p *Planner) SelectTopic(profile *learner.Profile, history []learner.SessionRecord, currentEngagement float64, tod TimeOfDay) TopicRecommendation {
	w := p.Weights
	level := profile.Level()
	recent := p.recentTopics(history)

	rec := TopicRecommendation{
		Difficulty:               p.sessionDifficulty(level, currentEngagement),
		EstimatedDurationMinutes: p.sessionMinutes(currentEngagement),
	}

	if len(history) == 0 {
		return p.fallback(rec, profile, recent, "no session history yet")
	}

	perf := topicPerformance(history)
	engaged := p.engagementSet(level, currentEngagement)
	affinity := p.Catalog.Affinity[tod]

	var candidates []string
	seen := make(map[string]bool)
	for _, list := range [][]string{p.Catalog.all(level), preferredTopics(profile), historyTopics(history)} {
		for _, t := range list {
			if t == "" || seen[t] || recent[t] {
				continue
			}
			seen[t] = true
			candidates = append(candidates, t)
		}
	}

	scores := make([]topicScore, 0, len(candidates))
	for _, t := range candidates {
		ts := topicScore{topic: t}
		if pf, ok := perf[t]; ok {
			ts.score += w.HistoryWeight * pf
			ts.reasons = append(ts.reasons, fmt.Sprintf("strong past performance (%.0f%%)", pf*100))
		}
		if contains(affinity, t) {
			ts.score += w.TimeOfDayWeight
			ts.reasons = append(ts.reasons, fmt.Sprintf("suits the %s", tod))
		}
		if contains(engaged, t) {
			ts.score += w.EngagementWeight
			ts.reasons = append(ts.reasons, p.engagementReason(currentEngagement))
		}
		if rank := profile.PreferenceRank(t); rank >= 0 {
			n := float64(len(profile.PreferredTopics))
			ts.score += w.PreferenceWeight * (n - float64(rank)) / n
			ts.reasons = append(ts.reasons, "one of your preferred topics")
		}
		scores = append(scores, ts)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		ri, rj := prefRank(profile, scores[i].topic), prefRank(profile, scores[j].topic)
		if ri != rj {
			return ri < rj
		}
		return scores[i].topic < scores[j].topic
	})

	if len(scores) == 0 || scores[0].score <= 0 {
		return p.fallback(rec, profile, recent, "no candidate topic stood out")
	}

	best := scores[0]
	rec.Topic = best.topic
	rec.Confidence = clamp(0.4+0.5*best.score, 0.4, 0.95)
	rec.Reason = "Chosen for " + strings.Join(best.reasons, ", ") + "."
	return rec
}

// fallback picks from the level-appropriate list: the first preferred topic
// not recently covered, else the first topic not recently covered.
func (p *Planner) fallback(rec TopicRecommendation, profile *learner.Profile, recent map[string]bool, why string) TopicRecommendation {
	list := p.Catalog.LevelTopics(profile.Level())
	rec.Fallback = true
	rec.Confidence = p.Weights.FallbackConfidence

	for _, t := range list {
		if !recent[t] && profile.PreferenceRank(t) >= 0 {
			rec.Topic = t
			rec.Reason = fmt.Sprintf("A %s topic you said you enjoy (%s).", profile.Level().DisplayName(), why)
			return rec
		}
	}
	for _, t := range list {
		if !recent[t] {
			rec.Topic = t
			rec.Reason = fmt.Sprintf("A good %s starter topic (%s).", profile.Level().DisplayName(), why)
			return rec
		}
	}
	rec.Topic = list[0]
	rec.Reason = fmt.Sprintf("A good %s starter topic (%s).", profile.Level().DisplayName(), why)
	return rec
}

// recentTopics returns the topics of the latest RecentWindow sessions.
func (p *Planner) recentTopics(history []learner.SessionRecord) map[string]bool {
	sorted := sortedHistory(history)
	out := make(map[string]bool)
	start := len(sorted) - p.Weights.RecentWindow
	if start < 0 {
		start = 0
	}
	for _, s := range sorted[start:] {
		if s.Topic != "" {
			out[s.Topic] = true
		}
	}
	return out
}

// engagementSet is the candidate set for the current engagement: easy topics
// when low, level topics plus challenging ones when high, else level topics.
func (p *Planner) engagementSet(level learner.Level, engagement float64) []string {
	switch {
	case engagement < p.Weights.LowEngagement:
		return p.Catalog.Easy
	case engagement >= p.Weights.HighEngagement:
		return append(append([]string{}, p.Catalog.LevelTopics(level)...), p.Catalog.Challenging...)
	default:
		return p.Catalog.LevelTopics(level)
	}
}

func (p *Planner) engagementReason(engagement float64) string {
	switch {
	case engagement < p.Weights.LowEngagement:
		return "an easy topic while engagement is low"
	case engagement >= p.Weights.HighEngagement:
		return "a stretch while engagement is high"
	default:
		return "a good fit for your level"
	}
}

// sessionDifficulty eases off one level when engagement is low.
func (p *Planner) sessionDifficulty(level learner.Level, engagement float64) learner.Level {
	if engagement < p.Weights.LowEngagement {
		return level.Prev()
	}
	return level
}

func (p *Planner) sessionMinutes(engagement float64) int {
	switch {
	case engagement < p.Weights.LowEngagement:
		return p.Weights.ShortSessionMinutes
	case engagement >= p.Weights.HighEngagement:
		return p.Weights.LongSessionMinutes
	default:
		return p.Weights.NormalSessionMinutes
	}
}

// topicPerformance returns each topic's mean performance in [0,1].
func topicPerformance(history []learner.SessionRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range history {
		if s.Topic == "" {
			continue
		}
		sums[s.Topic] += s.Metrics.PerformanceScore() / 100
		counts[s.Topic]++
	}
	out := make(map[string]float64, len(sums))
	for t, sum := range sums {
		out[t] = sum / float64(counts[t])
	}
	return out
}

func historyTopics(history []learner.SessionRecord) []string {
	out := make([]string, 0, len(history))
	for _, s := range sortedHistory(history) {
		out = append(out, s.Topic)
	}
	return out
}

func preferredTopics(profile *learner.Profile) []string {
	if profile == nil {
		return nil
	}
	return profile.PreferredTopics
}

// prefRank orders preferred topics first, by their stated order.
func prefRank(profile *learner.Profile, topic string) int {
	if r := profile.PreferenceRank(topic); r >= 0 {
		return r
	}
	return int(^uint(0) >> 1)
}

// sortedHistory returns a copy of history ordered by start time.
func sortedHistory(history []learner.SessionRecord) []learner.SessionRecord {
	out := append([]learner.SessionRecord(nil), history...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
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
