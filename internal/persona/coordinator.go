package persona

import (
	"fmt"
	"sort"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/learner"
)

// Action is the coordination outcome.
type Action string

const (
	ActionMaintain    Action = "maintain"
	ActionTransition  Action = "transition"
	ActionCollaborate Action = "collaborate"
)

// Thresholds tune the coordination decision.
type Thresholds struct {
	PerformingWell  float64 `yaml:"performing_well"`
	DominanceMargin float64 `yaml:"dominance_margin"`
	MinDeficit      float64 `yaml:"min_deficit"`
	CooldownTurns   int     `yaml:"cooldown_turns"`
}

// DefaultThresholds returns the standard coordination thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PerformingWell:  70,
		DominanceMargin: 0.15,
		MinDeficit:      0.2,
		CooldownTurns:   6,
	}
}

// Validate checks the thresholds are usable.
func (t Thresholds) Validate() error {
	if t.PerformingWell < 0 || t.PerformingWell > 100 {
		return fmt.Errorf("persona.performing_well must be within 0..100")
	}
	if t.DominanceMargin < 0 || t.MinDeficit < 0 {
		return fmt.Errorf("persona margins must not be negative")
	}
	if t.CooldownTurns < 0 {
		return fmt.Errorf("persona.cooldown_turns must not be negative")
	}
	return nil
}

// Decision is the result of a coordination check.
type Decision struct {
	Action        Action             `json:"action"`
	TargetPersona string             `json:"target_persona,omitempty"`
	Reason        string             `json:"reason"`
	Collaboration *CollaborationPlan `json:"collaboration,omitempty"`
	Engagement    float64            `json:"engagement"`
	DominantGoal  learner.Goal       `json:"dominant_goal,omitempty"`
}

// GoalDeficit is how far a learner is from meeting a goal, in [0,1].
type GoalDeficit struct {
	Goal    learner.Goal `json:"goal"`
	Deficit float64      `json:"deficit"`
}

// Coordinator decides between maintaining, transitioning and collaborating.
// It holds no per-session state.
type Coordinator struct {
	Thresholds Thresholds
	Catalog    Catalog
	Analyzer   *engagement.Analyzer
}

// NewCoordinator returns a coordinator with the default catalog.
func NewCoordinator(t Thresholds, az *engagement.Analyzer) *Coordinator {
	if az == nil {
		az = engagement.NewAnalyzer(engagement.DefaultWeights())
	}
	return &Coordinator{Thresholds: t, Catalog: DefaultCatalog(), Analyzer: az}
}

var defaultCoordinator = NewCoordinator(DefaultThresholds(), nil)

// Coordinate runs a coordination check with the default thresholds.
func Coordinate(states Lookup, sessionID string, turns []conversation.Turn, metrics learner.SessionMetrics, profile *learner.Profile) (Decision, error) {
	return defaultCoordinator.Coordinate(states, sessionID, turns, metrics, profile)
}

// coordinatedGoals are the goals personas are matched against, in tie order.
var coordinatedGoals = []learner.Goal{
	learner.GoalGrammar,
	learner.GoalFluency,
	learner.GoalVocabulary,
	learner.GoalConfidence,
	learner.GoalConversation,
}

// Coordinate decides whether the active persona should keep the session.
// An engaged learner with no risk flags keeps the active persona. Otherwise
// the unmet goals are ranked by deficit: a goal that leads the runner-up by
// the dominance margin triggers a transition to its specialist, and anything
// less decisive splits the session between two personas.
func (c *Coordinator) Coordinate(states Lookup, sessionID string, turns []conversation.Turn, metrics learner.SessionMetrics, profile *learner.Profile) (Decision, error) {
	st, ok := states.Get(sessionID)
	if !ok {
		return Decision{}, fmt.Errorf("coordinate %q: %w", sessionID, ErrUnknownSession)
	}

	an := c.Analyzer.Analyze(turns, profile, metrics.DurationSec, "")
	d := Decision{Engagement: an.OverallEngagement}

	risky := an.RiskLevel != engagement.RiskLow || an.HasPattern(engagement.PatternFrustration)
	if an.OverallEngagement >= c.Thresholds.PerformingWell && !risky {
		d.Action = ActionMaintain
		d.Reason = fmt.Sprintf("Learner is performing well (engagement %.0f); keep the current persona.", an.OverallEngagement)
		return d, nil
	}

	if st.LastTransitionTurn >= 0 && len(turns)-st.LastTransitionTurn < c.Thresholds.CooldownTurns {
		d.Action = ActionMaintain
		d.Reason = fmt.Sprintf("A transition happened %d turns ago; give the current persona time to settle.", len(turns)-st.LastTransitionTurn)
		return d, nil
	}

	deficits := c.Deficits(metrics, profile, an)
	if len(deficits) == 0 {
		return c.collaborate(d, st, nil, "Engagement is low with no clear skill gap"), nil
	}

	top := deficits[0]
	dominant := len(deficits) == 1 || top.Deficit-deficits[1].Deficit >= c.Thresholds.DominanceMargin
	if dominant {
		d.DominantGoal = top.Goal
		best, ok := c.Catalog.BestFor(top.Goal)
		if ok && best.ID != st.ActivePersona {
			d.Action = ActionTransition
			d.TargetPersona = best.ID
			d.Reason = fmt.Sprintf("%s is the dominant gap (%.0f%% short); hand over to %s.", top.Goal, top.Deficit*100, best.Name)
			return d, nil
		}
	}
	return c.collaborate(d, st, deficits, "No single persona covers the learner's gaps"), nil
}

// collaborate builds a collaboration decision. When the top goal's specialist
// is not active it supports the active persona; otherwise the active persona
// presents and another persona reviews.
func (c *Coordinator) collaborate(d Decision, st SessionState, deficits []GoalDeficit, why string) Decision {
	d.Action = ActionCollaborate
	active := st.ActivePersona

	if len(deficits) > 0 {
		if best, ok := c.Catalog.BestFor(deficits[0].Goal); ok && best.ID != active {
			plan := specializedSupport(active, best.ID)
			d.Collaboration = &plan
			d.TargetPersona = best.ID
			d.Reason = fmt.Sprintf("%s; %s supports with %s.", why, best.Name, deficits[0].Goal)
			return d
		}
	}

	reviewer := ""
	for _, g := range deficits {
		if best, ok := c.Catalog.BestFor(g.Goal); ok && best.ID != active {
			reviewer = best.ID
			break
		}
	}
	if reviewer == "" {
		if other, ok := c.Catalog.FirstOther(active); ok {
			reviewer = other.ID
		}
	}
	plan := peerReview(active, reviewer)
	d.Collaboration = &plan
	d.TargetPersona = reviewer
	d.Reason = fmt.Sprintf("%s; run a present, review, reflect round.", why)
	return d
}

// Deficits ranks the learner's unmet goals, largest deficit first. Stated
// goals are considered when the profile has any; otherwise all coordinated
// goals are. Goals below the minimum deficit are met and omitted.
func (c *Coordinator) Deficits(m learner.SessionMetrics, profile *learner.Profile, an engagement.Analysis) []GoalDeficit {
	var prog learner.ProgressMetrics
	if profile != nil {
		prog = profile.Progress
	}
	measured := m.GrammarAccuracy > 0 || m.FluencyScore > 0

	deficitOf := func(g learner.Goal) float64 {
		switch g {
		case learner.GoalGrammar:
			if measured {
				return 1 - m.GrammarAccuracy
			}
			return 1 - prog.GrammarProgress
		case learner.GoalFluency:
			if measured {
				return 1 - m.FluencyScore
			}
			return 1 - prog.FluencyProgress
		case learner.GoalVocabulary:
			return 1 - prog.VocabularyGrowth
		case learner.GoalConfidence:
			return 1 - an.Signals.ConfidenceLevel*0.5 - prog.ConfidenceLevel*0.5
		case learner.GoalConversation:
			return 1 - an.OverallEngagement/100
		}
		return 0
	}

	stated := profile != nil && len(profile.LearningGoals) > 0
	var out []GoalDeficit
	for _, g := range coordinatedGoals {
		if stated && !profile.HasGoal(g) {
			continue
		}
		d := clamp01(deficitOf(g))
		if d < c.Thresholds.MinDeficit {
			continue
		}
		out = append(out, GoalDeficit{Goal: g, Deficit: d})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Deficit > out[j].Deficit })
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
