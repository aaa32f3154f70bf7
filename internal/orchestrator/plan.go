package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/voxtutor/internal/coach"
	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/persona"
	"github.com/abhisek/voxtutor/internal/planner"
	"github.com/abhisek/voxtutor/internal/statestore"
	"github.com/abhisek/voxtutor/internal/trend"
)

// StartInput opens a session.
type StartInput struct {
	UserID string
	// SessionID is generated when empty.
	SessionID string
	// Persona overrides the initial persona.
	Persona string
}

// StartSession creates and stores the coordination state for a new session.
// The first persona is the specialist for the learner's first stated goal,
// or the friendly tutor.
func (o *Orchestrator) StartSession(ctx context.Context, in StartInput) (persona.SessionState, error) {
	profile, _, err := o.learnerData(ctx, in.UserID)
	if err != nil {
		return persona.SessionState{}, err
	}

	sid := in.SessionID
	if sid == "" {
		sid = uuid.NewString()
	}
	first := in.Persona
	if first == "" {
		first = o.initialPersona(profile)
	}
	if _, ok := o.coord.Catalog.Get(first); !ok {
		return persona.SessionState{}, fmt.Errorf("start session: %q: %w", first, persona.ErrUnknownPersona)
	}

	st := persona.NewSessionState(sid, in.UserID, first, o.now())
	if err := o.states.Put(ctx, st); err != nil {
		return persona.SessionState{}, fmt.Errorf("save session state: %w", err)
	}
	o.log.Info("session started", zap.String("session_id", sid), zap.String("user_id", in.UserID), zap.String("persona", first))
	return st, nil
}

func (o *Orchestrator) initialPersona(p *learner.Profile) string {
	if p != nil {
		for _, g := range p.LearningGoals {
			if best, ok := o.coord.Catalog.BestFor(g); ok {
				return best.ID
			}
		}
	}
	return persona.FriendlyTutor
}

// PlanInput is the state at a planning boundary.
type PlanInput struct {
	SessionID string
	UserID    string
	Turns     []conversation.Turn
	Metrics   learner.SessionMetrics
	// TimeOfDay defaults to the current local time of day.
	TimeOfDay planner.TimeOfDay
	// Style is how a persona handoff is announced.
	Style persona.Style
}

// PlanResult is the full planning decision for the next stretch of a session.
type PlanResult struct {
	Topic      planner.TopicRecommendation  `json:"topic"`
	Difficulty planner.DifficultyAdjustment `json:"difficulty"`
	Trend      trend.Result                 `json:"trend"`
	Decision   persona.Decision             `json:"decision"`
	Transition *persona.Transition          `json:"transition,omitempty"`
	State      persona.SessionState         `json:"state"`
	Rationale  coach.Result                 `json:"rationale"`
}

// PlanSession picks the next topic and difficulty, runs persona coordination
// and applies its outcome to the stored session state. An unknown session is
// reported as persona.ErrUnknownSession.
func (o *Orchestrator) PlanSession(ctx context.Context, in PlanInput) (*PlanResult, error) {
	profile, history, err := o.learnerData(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	now := o.now()
	tod := in.TimeOfDay
	if tod == "" {
		tod = planner.TimeOfDayAt(now)
	}

	an := o.analyzer.Analyze(in.Turns, profile, in.Metrics.DurationSec, "")
	res := &PlanResult{
		Topic: o.planner.SelectTopic(profile, history, an.OverallEngagement, tod),
		Difficulty: o.planner.AdjustDifficulty(profile, in.Turns, planner.Performance{
			Current: in.Metrics,
			History: history,
			Now:     now,
		}),
		Trend: trend.Analyze(history, trend.Month, now),
	}

	lookup := statestore.NewLookup(ctx, o.states)
	dec, err := o.coord.Coordinate(lookup, in.SessionID, in.Turns, in.Metrics, profile)
	if lookup.Err != nil {
		return nil, fmt.Errorf("load session state: %w", lookup.Err)
	}
	if err != nil {
		return nil, err
	}
	res.Decision = dec

	st, err := o.states.Get(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session state: %w", err)
	}
	switch dec.Action {
	case persona.ActionTransition:
		tr, err := o.coord.ExecuteTransition(lookup, in.SessionID, dec.TargetPersona, in.Style, len(in.Turns), now)
		if err != nil && !errors.Is(err, persona.ErrAlreadyActive) {
			return nil, err
		}
		if err == nil {
			res.Transition = &tr
			st = tr.State
		}
	case persona.ActionCollaborate:
		if dec.Collaboration != nil {
			st = persona.ApplyCollaboration(st, *dec.Collaboration, now)
		}
	}
	if dec.Action != persona.ActionMaintain {
		if err := o.states.Put(ctx, st); err != nil {
			return nil, fmt.Errorf("save session state: %w", err)
		}
	}
	res.State = st

	res.Rationale = o.coach.Rationale(ctx, coach.RationaleInput{
		Level:    profile.Level(),
		Decision: fmt.Sprintf("practise %s at %s level", planner.DisplayTopic(res.Topic.Topic), res.Topic.Difficulty.DisplayName()),
		Reason:   res.Topic.Reason,
	})

	o.log.Info("session planned",
		zap.String("session_id", in.SessionID),
		zap.String("topic", res.Topic.Topic),
		zap.String("difficulty", string(res.Difficulty.RecommendedDifficulty)),
		zap.String("trend", string(res.Trend.Trend)),
		zap.String("persona_action", string(dec.Action)),
		zap.String("persona", st.ActivePersona),
	)
	return res, nil
}

// FinishSession records the completed session in the learner's history and
// drops its coordination state.
func (o *Orchestrator) FinishSession(ctx context.Context, rec learner.SessionRecord) error {
	if o.sessions == nil {
		return errors.New("finish session: no session repository configured")
	}
	if st, err := o.states.Get(ctx, rec.SessionID); err == nil && rec.Persona == "" {
		rec.Persona = st.ActivePersona
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = o.now()
	}
	if err := o.sessions.AppendSession(ctx, rec); err != nil {
		return err
	}
	if err := o.states.Delete(ctx, rec.SessionID); err != nil {
		o.log.Warn("failed to drop session state", zap.String("session_id", rec.SessionID), zap.Error(err))
	}
	o.log.Info("session finished", zap.String("session_id", rec.SessionID), zap.Float64("performance", rec.Metrics.PerformanceScore()))
	return nil
}

func coachInput(res *TurnResult, profile *learner.Profile, topic, last string) coach.EncourageInput {
	return coach.EncourageInput{
		Profile:       profile,
		Analysis:      res.Analysis,
		Action:        firstAction(res.Interventions.Immediate),
		Topic:         topic,
		LastUtterance: last,
	}
}

func firstAction(actions []engagement.Action) engagement.Action {
	if len(actions) == 0 {
		return engagement.Action{}
	}
	return actions[0]
}
