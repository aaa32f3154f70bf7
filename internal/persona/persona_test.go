package persona

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/learner"
)

var t0 = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func exchanges(gap time.Duration, conf float64, replies ...string) []conversation.Turn {
	var turns []conversation.Turn
	at := t0
	for _, r := range replies {
		turns = append(turns, conversation.NewTurn(conversation.SenderAgent, "What do you think?", at))
		at = at.Add(gap)
		u := conversation.NewTurn(conversation.SenderUser, r, at)
		u.Confidence = conversation.Float(conf)
		turns = append(turns, u)
		at = at.Add(3 * time.Second)
	}
	return turns
}

func engagedTurns() []conversation.Turn {
	return exchanges(2*time.Second, 0.9,
		"I really love this topic because we talk about wonderful places and interesting people from many countries",
		"Yesterday I enjoyed cooking a great dinner for my friends and everyone said the food tasted amazing",
		"My favorite part of learning is discovering beautiful new words that I can use with my colleagues",
	)
}

func quietTurns() []conversation.Turn {
	return exchanges(6*time.Second, 0.35, "ok", "no", "yes")
}

func session(active string) States {
	return States{"s1": NewSessionState("s1", "u1", active, t0)}
}

func TestCoordinate_UnknownSession(t *testing.T) {
	_, err := Coordinate(States{}, "missing", quietTurns(), learner.SessionMetrics{}, nil)
	if !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("err = %v, want ErrUnknownSession", err)
	}
}

func TestCoordinate_MaintainWhenEngaged(t *testing.T) {
	d, err := Coordinate(session(FriendlyTutor), "s1", engagedTurns(), learner.SessionMetrics{GrammarAccuracy: 0.2, FluencyScore: 0.2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != ActionMaintain {
		t.Errorf("action = %s (%s), want maintain", d.Action, d.Reason)
	}
	if d.TargetPersona != "" {
		t.Errorf("target = %q, want none", d.TargetPersona)
	}
}

func TestCoordinate_TransitionToSpecialist(t *testing.T) {
	p := &learner.Profile{LearningGoals: []learner.Goal{learner.GoalGrammar, learner.GoalFluency}}
	m := learner.SessionMetrics{GrammarAccuracy: 0.3, FluencyScore: 0.9}

	d, err := Coordinate(session(FriendlyTutor), "s1", quietTurns(), m, p)
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != ActionTransition || d.TargetPersona != GrammarCoach {
		t.Errorf("got %s → %q, want transition → %s", d.Action, d.TargetPersona, GrammarCoach)
	}
	if d.DominantGoal != learner.GoalGrammar {
		t.Errorf("dominant goal = %s, want grammar", d.DominantGoal)
	}
}

func TestCoordinate_DominantGoalAlreadyCovered(t *testing.T) {
	p := &learner.Profile{LearningGoals: []learner.Goal{learner.GoalGrammar}}
	m := learner.SessionMetrics{GrammarAccuracy: 0.3, FluencyScore: 0.9}

	d, err := Coordinate(session(GrammarCoach), "s1", quietTurns(), m, p)
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != ActionCollaborate {
		t.Fatalf("action = %s, want collaborate", d.Action)
	}
	plan := d.Collaboration
	if plan == nil || plan.Mode != ModePeerReview {
		t.Fatalf("collaboration = %+v, want peer_review", plan)
	}
	if len(plan.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(plan.Steps))
	}
	activities := []string{plan.Steps[0].Activity, plan.Steps[1].Activity, plan.Steps[2].Activity}
	if strings.Join(activities, ",") != "present,review,reflect" {
		t.Errorf("activities = %v", activities)
	}
	if plan.Steps[0].Persona != GrammarCoach || plan.Steps[1].Persona == GrammarCoach {
		t.Errorf("steps = %+v, want grammar coach presenting and another persona reviewing", plan.Steps)
	}
}

func TestCoordinate_SpecializedSupportWithoutDominantGoal(t *testing.T) {
	p := &learner.Profile{LearningGoals: []learner.Goal{learner.GoalGrammar, learner.GoalFluency}}
	m := learner.SessionMetrics{GrammarAccuracy: 0.4, FluencyScore: 0.45}

	d, err := Coordinate(session(FriendlyTutor), "s1", quietTurns(), m, p)
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != ActionCollaborate || d.Collaboration == nil {
		t.Fatalf("got %s, want collaborate with a plan", d.Action)
	}
	if d.Collaboration.Mode != ModeSpecializedSupport {
		t.Errorf("mode = %s, want specialized_support", d.Collaboration.Mode)
	}
	if got := d.Collaboration.PersonaFor(RoleMainTutor); got != FriendlyTutor {
		t.Errorf("main tutor = %q, want %s", got, FriendlyTutor)
	}
	if got := d.Collaboration.PersonaFor(RoleSpecialist); got != GrammarCoach {
		t.Errorf("specialist = %q, want %s", got, GrammarCoach)
	}
}

func TestCoordinate_CooldownMaintains(t *testing.T) {
	turns := quietTurns()
	st := NewSessionState("s1", "u1", FriendlyTutor, t0)
	st.LastTransitionTurn = len(turns) - 3
	p := &learner.Profile{LearningGoals: []learner.Goal{learner.GoalGrammar}}

	d, err := Coordinate(States{"s1": st}, "s1", turns, learner.SessionMetrics{GrammarAccuracy: 0.2, FluencyScore: 0.9}, p)
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != ActionMaintain {
		t.Errorf("action = %s, want maintain during cooldown", d.Action)
	}
}

func TestExecuteTransition_Explicit(t *testing.T) {
	states := session(FriendlyTutor)
	tr, err := ExecuteTransition(states, "s1", GrammarCoach, StyleExplicit, 8, t0.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if tr.State.ActivePersona != GrammarCoach {
		t.Errorf("active = %s, want %s", tr.State.ActivePersona, GrammarCoach)
	}
	if tr.State.LastTransitionTurn != 8 || len(tr.State.Transitions) != 1 {
		t.Errorf("state = %+v, want one recorded transition at turn 8", tr.State)
	}
	if !strings.Contains(tr.Message, "Professor Lang") {
		t.Errorf("message %q should introduce the new persona", tr.Message)
	}
	if states["s1"].ActivePersona != FriendlyTutor {
		t.Error("ExecuteTransition mutated the caller's state")
	}
}

func TestExecuteTransition_Smooth(t *testing.T) {
	tr, err := ExecuteTransition(session(FriendlyTutor), "s1", ConversationPartner, StyleSmooth, 2, t0)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Message != "" {
		t.Errorf("smooth transition message = %q, want none", tr.Message)
	}
}

func TestExecuteTransition_Errors(t *testing.T) {
	tests := []struct {
		name    string
		session string
		target  string
		want    error
	}{
		{"unknown session", "nope", GrammarCoach, ErrUnknownSession},
		{"unknown persona", "s1", "pirate", ErrUnknownPersona},
		{"already active", "s1", FriendlyTutor, ErrAlreadyActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExecuteTransition(session(FriendlyTutor), tt.session, tt.target, StyleSmooth, 0, t0)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApplyCollaboration(t *testing.T) {
	st := NewSessionState("s1", "u1", FriendlyTutor, t0)
	plan := specializedSupport(FriendlyTutor, VocabularyGuide)
	next := ApplyCollaboration(st, plan, t0.Add(time.Minute))
	if next.Strategy != StrategyCollaborative || next.Collaboration == nil {
		t.Fatalf("state = %+v, want collaborative", next)
	}
	if next.ActivePersona != FriendlyTutor {
		t.Errorf("active = %s, want unchanged", next.ActivePersona)
	}
	if st.Strategy != StrategySingle {
		t.Error("ApplyCollaboration mutated its input")
	}
}

func TestParseStyle(t *testing.T) {
	if s, err := ParseStyle(""); err != nil || s != StyleSmooth {
		t.Errorf("ParseStyle(\"\") = %s, %v", s, err)
	}
	if s, err := ParseStyle("Explicit"); err != nil || s != StyleExplicit {
		t.Errorf("ParseStyle(Explicit) = %s, %v", s, err)
	}
	if _, err := ParseStyle("loud"); err == nil {
		t.Error("expected error for unknown style")
	}
}
