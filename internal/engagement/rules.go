package engagement

import (
	"fmt"

	"github.com/abhisek/voxtutor/internal/learner"
)

// RuleInput is everything an intervention rule may inspect.
type RuleInput struct {
	Analysis     Analysis
	Signals      Signals
	Profile      *learner.Profile
	CurrentTopic string
	Weights      Weights
}

// topic returns the current topic or a generic stand-in.
func (in *RuleInput) topic() string {
	if in.CurrentTopic == "" {
		return "the current topic"
	}
	return in.CurrentTopic
}

// alternative returns the learner's first preferred topic that differs from
// the current one, or a generic suggestion.
func (in *RuleInput) alternative() string {
	if in.Profile != nil {
		for _, t := range in.Profile.PreferredTopics {
			if t != "" && t != in.CurrentTopic {
				return t
			}
		}
	}
	return "a lighter, familiar topic"
}

// Rule maps an analysis to zero or more recommended actions.
type Rule interface {
	Name() string
	Evaluate(in *RuleInput) []Action
}

// DefaultRules returns the standard intervention rule table. Every rule is
// evaluated; order only matters for ties after sorting.
func DefaultRules() []Rule {
	return []Rule{
		&LowEngagementRule{},
		&NegativeToneRule{},
		&FrustrationRule{},
		&SlowResponseRule{},
		&LowParticipationRule{},
		&MinimalResponsesRule{},
		&FatigueRule{},
		&HighEngagementRule{},
		&DecliningPerformanceRule{},
	}
}

// RunRules evaluates every rule and collects their actions in rule order.
func RunRules(rules []Rule, in *RuleInput) []Action {
	var out []Action
	for _, r := range rules {
		out = append(out, r.Evaluate(in)...)
	}
	return out
}

// LowEngagementRule encourages a learner whose score is below the low threshold.
type LowEngagementRule struct{}

func (r *LowEngagementRule) Name() string { return "low-engagement" }

func (r *LowEngagementRule) Evaluate(in *RuleInput) []Action {
	if in.Analysis.OverallEngagement >= in.Weights.LowThreshold {
		return nil
	}
	return []Action{{
		Type:           ActionEncouragement,
		Priority:       PriorityHigh,
		Description:    fmt.Sprintf("Praise the learner's last answer and ask an easy, open question about %s.", in.topic()),
		ExpectedImpact: 0.7,
		Horizon:        HorizonImmediate,
	}}
}

// NegativeToneRule reassures a learner whose language skews negative.
type NegativeToneRule struct{}

func (r *NegativeToneRule) Name() string { return "negative-tone" }

func (r *NegativeToneRule) Evaluate(in *RuleInput) []Action {
	if in.Signals.EmotionalTone != ToneNegative {
		return nil
	}
	return []Action{{
		Type:           ActionEncouragement,
		Priority:       PriorityMedium,
		Description:    "Acknowledge how the learner feels and point out something they did well.",
		ExpectedImpact: 0.6,
		Horizon:        HorizonImmediate,
	}}
}

// FrustrationRule moves away from a topic that is causing frustration.
type FrustrationRule struct{}

func (r *FrustrationRule) Name() string { return "frustration" }

func (r *FrustrationRule) Evaluate(in *RuleInput) []Action {
	if len(in.Signals.FrustrationIndicators) == 0 && !in.Analysis.HasPattern(PatternFrustration) {
		return nil
	}
	return []Action{{
		Type:           ActionTopicChange,
		Priority:       PriorityHigh,
		Description:    fmt.Sprintf("Acknowledge the difficulty and switch from %s to %s.", in.topic(), in.alternative()),
		ExpectedImpact: 0.8,
		Horizon:        HorizonImmediate,
	}}
}

// SlowResponseRule simplifies material when the learner answers slowly.
type SlowResponseRule struct{}

func (r *SlowResponseRule) Name() string { return "slow-response" }

func (r *SlowResponseRule) Evaluate(in *RuleInput) []Action {
	if !in.Weights.isSlow(in.Signals, in.Profile) {
		return nil
	}
	return []Action{{
		Type:           ActionDifficultyAdjust,
		Priority:       PriorityMedium,
		Description:    fmt.Sprintf("Simplify the next prompts on %s with shorter sentences and familiar vocabulary.", in.topic()),
		ExpectedImpact: 0.6,
		Horizon:        HorizonImmediate,
	}}
}

// LowParticipationRule hands over to a more conversational persona.
type LowParticipationRule struct{}

func (r *LowParticipationRule) Name() string { return "low-participation" }

func (r *LowParticipationRule) Evaluate(in *RuleInput) []Action {
	if in.Signals.ParticipationLevel != ParticipationLow {
		return nil
	}
	return []Action{{
		Type:           ActionAgentSwitch,
		Priority:       PriorityMedium,
		Description:    "Hand the conversation to a more conversational tutor to draw the learner out.",
		ExpectedImpact: 0.5,
		Horizon:        HorizonShortTerm,
	}}
}

// MinimalResponsesRule replaces closed questions with an open topic.
type MinimalResponsesRule struct{}

func (r *MinimalResponsesRule) Name() string { return "minimal-responses" }

func (r *MinimalResponsesRule) Evaluate(in *RuleInput) []Action {
	if !in.Analysis.HasPattern(PatternMinimalResponses) {
		return nil
	}
	return []Action{{
		Type:           ActionTopicChange,
		Priority:       PriorityMedium,
		Description:    fmt.Sprintf("Ask open-ended questions about %s instead of yes/no questions.", in.alternative()),
		ExpectedImpact: 0.55,
		Horizon:        HorizonShortTerm,
	}}
}

// FatigueRule suggests a pause when answers get shorter or slower.
type FatigueRule struct{}

func (r *FatigueRule) Name() string { return "fatigue" }

func (r *FatigueRule) Evaluate(in *RuleInput) []Action {
	if !in.Analysis.HasPattern(PatternIncreasingLatency) && !in.Analysis.HasPattern(PatternDecreasingVerbosity) {
		return nil
	}
	return []Action{{
		Type:           ActionBreakSuggestion,
		Priority:       PriorityMedium,
		Description:    "Suggest a short break or a quick change of pace.",
		ExpectedImpact: 0.5,
		Horizon:        HorizonShortTerm,
	}}
}

// HighEngagementRule raises the challenge for an engaged learner.
type HighEngagementRule struct{}

func (r *HighEngagementRule) Name() string { return "high-engagement" }

func (r *HighEngagementRule) Evaluate(in *RuleInput) []Action {
	if in.Analysis.OverallEngagement < in.Weights.EngagedThreshold || in.Analysis.RiskLevel != RiskLow {
		return nil
	}
	return []Action{{
		Type:           ActionDifficultyAdjust,
		Priority:       PriorityLow,
		Description:    fmt.Sprintf("The learner is engaged: raise the challenge on %s with follow-up questions.", in.topic()),
		ExpectedImpact: 0.4,
		Horizon:        HorizonShortTerm,
	}}
}

// DecliningPerformanceRule plans review work for future sessions.
type DecliningPerformanceRule struct{}

func (r *DecliningPerformanceRule) Name() string { return "declining-performance" }

func (r *DecliningPerformanceRule) Evaluate(in *RuleInput) []Action {
	if !in.Analysis.HasPattern(PatternDecliningPerformance) {
		return nil
	}
	return []Action{
		{
			Type:           ActionDifficultyAdjust,
			Priority:       PriorityLow,
			Description:    "Plan a review session of recent material before introducing new content.",
			ExpectedImpact: 0.65,
			Horizon:        HorizonLongTerm,
		},
		{
			Type:           ActionEncouragement,
			Priority:       PriorityLow,
			Description:    "Set a small, achievable goal for the next session to rebuild momentum.",
			ExpectedImpact: 0.45,
			Horizon:        HorizonLongTerm,
		},
	}
}
