package engagement

// Tone is the overall emotional tone of the learner's turns.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNeutral  Tone = "neutral"
	ToneNegative Tone = "negative"
)

// Participation is a coarse measure of how actively the learner is talking.
type Participation string

const (
	ParticipationHigh   Participation = "high"
	ParticipationMedium Participation = "medium"
	ParticipationLow    Participation = "low"
)

// Risk classifies how urgently intervention is needed.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Urgency is how soon the tutor should act on the recommended actions.
type Urgency string

const (
	UrgencyNone   Urgency = "none"
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ActionType is the kind of intervention recommended.
type ActionType string

const (
	ActionTopicChange      ActionType = "topic_change"
	ActionDifficultyAdjust ActionType = "difficulty_adjust"
	ActionEncouragement    ActionType = "encouragement"
	ActionBreakSuggestion  ActionType = "break_suggestion"
	ActionAgentSwitch      ActionType = "agent_switch"
)

// Priority orders recommended actions.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns a sortable weight for the priority (higher is more urgent).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Horizon is when an action should take effect.
type Horizon string

const (
	HorizonImmediate Horizon = "immediate"  // current turn
	HorizonShortTerm Horizon = "short_term" // next few turns
	HorizonLongTerm  Horizon = "long_term"  // future sessions
)

// Pattern labels reported in Analysis.DetectedPatterns.
const (
	PatternDecreasingVerbosity  = "decreasing_verbosity"
	PatternIncreasingLatency    = "increasing_latency"
	PatternMinimalResponses     = "minimal_responses"
	PatternDecliningConfidence  = "declining_confidence"
	PatternFrustration          = "frustration_detected"
	PatternDecliningPerformance = "declining_performance"
	PatternNegativeTone         = "negative_tone"
	PatternLowParticipation     = "low_participation"
	PatternSlowResponses        = "slow_responses"
)

// Signals are the scalar features extracted from a conversation window.
// Computed fresh per analysis; never persisted.
type Signals struct {
	ResponseLatencyMs     float64       `json:"response_latency_ms"`
	MessageComplexity     float64       `json:"message_complexity"`
	EmotionalTone         Tone          `json:"emotional_tone"`
	ParticipationLevel    Participation `json:"participation_level"`
	FrustrationIndicators []string      `json:"frustration_indicators"`
	ConfidenceLevel       float64       `json:"confidence_level"`
}

// Action is a single recommended intervention.
type Action struct {
	Type           ActionType `json:"type"`
	Priority       Priority   `json:"priority"`
	Description    string     `json:"description"`
	ExpectedImpact float64    `json:"expected_impact"`
	Horizon        Horizon    `json:"horizon"`
}

// Analysis is the engagement assessment for a conversation window.
type Analysis struct {
	OverallEngagement   float64  `json:"overall_engagement"`
	RiskLevel           Risk     `json:"risk_level"`
	RecommendedActions  []Action `json:"recommended_actions"`
	DetectedPatterns    []string `json:"detected_patterns"`
	InterventionUrgency Urgency  `json:"intervention_urgency"`
	Signals             Signals  `json:"signals"`
}

// HasPattern reports whether label is among the detected patterns.
func (a Analysis) HasPattern(label string) bool {
	for _, p := range a.DetectedPatterns {
		if p == label {
			return true
		}
	}
	return false
}

// PatternMatch is a disengagement pattern found by DetectPatterns.
type PatternMatch struct {
	Pattern     string  `json:"pattern"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// Plan partitions recommended actions by horizon. Each slice is sorted by
// priority then expected impact, both descending.
type Plan struct {
	Immediate []Action `json:"immediate"`
	ShortTerm []Action `json:"short_term"`
	LongTerm  []Action `json:"long_term"`
}

// All returns every action in the plan as one sorted list.
func (p Plan) All() []Action {
	out := make([]Action, 0, len(p.Immediate)+len(p.ShortTerm)+len(p.LongTerm))
	out = append(out, p.Immediate...)
	out = append(out, p.ShortTerm...)
	out = append(out, p.LongTerm...)
	SortActions(out)
	return out
}
