package engagement

import (
	"sort"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/learner"
)

// Analyzer bundles the weights and rule table used for an engagement analysis.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	Weights Weights
	Rules   []Rule
}

// NewAnalyzer returns an analyzer with the given weights and the default rules.
func NewAnalyzer(w Weights) *Analyzer {
	return &Analyzer{Weights: w, Rules: DefaultRules()}
}

var defaultAnalyzer = NewAnalyzer(DefaultWeights())

// AnalyzeEngagement analyzes a turn window with the default weights and rules.
func AnalyzeEngagement(turns []conversation.Turn, profile *learner.Profile, sessionDurationSec int) Analysis {
	return defaultAnalyzer.Analyze(turns, profile, sessionDurationSec, "")
}

// GenerateInterventions builds the intervention plan for an analysis with the
// default rules.
func GenerateInterventions(a Analysis, s Signals, profile *learner.Profile, currentTopic string) Plan {
	return defaultAnalyzer.Interventions(a, s, profile, currentTopic)
}

// Analyze extracts signals, scores them, detects patterns and recommends
// actions. A window without learner turns yields the neutral default analysis.
func (az *Analyzer) Analyze(turns []conversation.Turn, profile *learner.Profile, sessionDurationSec int, currentTopic string) Analysis {
	w := az.Weights
	if len(conversation.UserTurns(turns)) == 0 {
		return az.emptyAnalysis()
	}

	sig := w.ExtractSignals(turns, sessionDurationSec, profile)
	score := w.Score(sig, profile)
	an := Analysis{
		OverallEngagement: score,
		RiskLevel:         w.ClassifyRisk(score, sig),
		DetectedPatterns:  az.labels(w.DetectPatterns(turns), sig, profile),
		Signals:           sig,
	}
	return az.finish(an, profile, currentTopic)
}

// WithPattern returns a copy of the analysis with an extra pattern label and
// the actions and urgency recomputed. Used when a pattern is established
// outside the turn window, such as a declining multi-session trend.
func (az *Analyzer) WithPattern(an Analysis, label string, profile *learner.Profile, currentTopic string) Analysis {
	if an.HasPattern(label) {
		return an
	}
	out := an
	out.DetectedPatterns = append(append([]string{}, an.DetectedPatterns...), label)
	return az.finish(out, profile, currentTopic)
}

// Interventions evaluates the rule table and partitions the resulting actions
// by horizon.
func (az *Analyzer) Interventions(an Analysis, s Signals, profile *learner.Profile, currentTopic string) Plan {
	in := &RuleInput{
		Analysis:     an,
		Signals:      s,
		Profile:      profile,
		CurrentTopic: currentTopic,
		Weights:      az.Weights,
	}
	plan := Plan{
		Immediate: []Action{},
		ShortTerm: []Action{},
		LongTerm:  []Action{},
	}
	for _, a := range RunRules(az.Rules, in) {
		a.ExpectedImpact = clamp(a.ExpectedImpact, 0, 1)
		switch a.Horizon {
		case HorizonShortTerm:
			plan.ShortTerm = append(plan.ShortTerm, a)
		case HorizonLongTerm:
			plan.LongTerm = append(plan.LongTerm, a)
		default:
			a.Horizon = HorizonImmediate
			plan.Immediate = append(plan.Immediate, a)
		}
	}
	SortActions(plan.Immediate)
	SortActions(plan.ShortTerm)
	SortActions(plan.LongTerm)
	return plan
}

func (az *Analyzer) finish(an Analysis, profile *learner.Profile, currentTopic string) Analysis {
	an.RecommendedActions = az.Interventions(an, an.Signals, profile, currentTopic).All()
	an.InterventionUrgency = urgency(an)
	return an
}

func (az *Analyzer) emptyAnalysis() Analysis {
	w := az.Weights
	return Analysis{
		OverallEngagement:   w.BaselineScore,
		RiskLevel:           RiskLow,
		RecommendedActions:  []Action{},
		DetectedPatterns:    []string{},
		InterventionUrgency: UrgencyNone,
		Signals: Signals{
			ResponseLatencyMs:     w.DefaultLatencyMs,
			EmotionalTone:         ToneNeutral,
			ParticipationLevel:    ParticipationLow,
			FrustrationIndicators: []string{},
			ConfidenceLevel:       w.DefaultConfidence,
		},
	}
}

// labels merges detected patterns with signal-level flags into the analysis
// label list. Pattern labels come first in detection order.
func (az *Analyzer) labels(matches []PatternMatch, s Signals, profile *learner.Profile) []string {
	out := make([]string, 0, len(matches)+3)
	seen := make(map[string]bool)
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	for _, m := range matches {
		add(m.Pattern)
	}
	if len(s.FrustrationIndicators) > 0 {
		add(PatternFrustration)
	}
	if s.EmotionalTone == ToneNegative {
		add(PatternNegativeTone)
	}
	if s.ParticipationLevel == ParticipationLow {
		add(PatternLowParticipation)
	}
	if az.Weights.isSlow(s, profile) {
		add(PatternSlowResponses)
	}
	return out
}

func urgency(an Analysis) Urgency {
	switch {
	case an.RiskLevel == RiskHigh || an.HasPattern(PatternFrustration):
		return UrgencyHigh
	case an.RiskLevel == RiskMedium:
		return UrgencyMedium
	case len(an.RecommendedActions) > 0:
		return UrgencyLow
	default:
		return UrgencyNone
	}
}

// SortActions orders actions by priority then expected impact, both
// descending. The sort is stable so equal actions keep rule order.
func SortActions(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		pi, pj := actions[i].Priority.Rank(), actions[j].Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return actions[i].ExpectedImpact > actions[j].ExpectedImpact
	})
}
