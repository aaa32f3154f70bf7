package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/voxtutor/internal/coach"
	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/persona"
	"github.com/abhisek/voxtutor/internal/statestore"
	"github.com/abhisek/voxtutor/internal/store"
	"github.com/abhisek/voxtutor/internal/trend"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type fakeReader struct {
	mu       sync.Mutex
	profiles map[string]learner.Profile
	history  map[string][]learner.SessionRecord
	err      error
}

func (f *fakeReader) GetUserProfile(_ context.Context, userID string) (*learner.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", userID, store.ErrProfileNotFound)
	}
	return &p, nil
}

func (f *fakeReader) GetSessionHistory(_ context.Context, userID string, _ int) ([]learner.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[userID], nil
}

type fakeSessions struct {
	records []learner.SessionRecord
}

func (f *fakeSessions) AppendSession(_ context.Context, rec learner.SessionRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeSessions) GetSessionHistory(context.Context, string, int) ([]learner.SessionRecord, error) {
	return f.records, nil
}

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

func session(daysAgo int, topic string, grammar, fluency float64) learner.SessionRecord {
	return learner.SessionRecord{
		SessionID: fmt.Sprintf("h-%d", daysAgo),
		UserID:    "u1",
		Topic:     topic,
		StartedAt: t0.AddDate(0, 0, -daysAgo),
		Metrics:   learner.SessionMetrics{DurationSec: 900, GrammarAccuracy: grammar, FluencyScore: fluency},
	}
}

func newTestOrchestrator(r *fakeReader) (*Orchestrator, statestore.Store, *fakeSessions) {
	states := statestore.NewMemory()
	sessions := &fakeSessions{}
	o := New(Deps{
		Profiles: r,
		Sessions: sessions,
		States:   states,
		Coach:    coach.New(nil, coach.DefaultConfig(), nil, nil),
		Workers:  2,
		Now:      func() time.Time { return t0 },
	})
	return o, states, sessions
}

func grammarLearner() *fakeReader {
	return &fakeReader{
		profiles: map[string]learner.Profile{
			"u1": {UserID: "u1", LearningGoals: []learner.Goal{learner.GoalGrammar, learner.GoalFluency}},
		},
		history: map[string][]learner.SessionRecord{},
	}
}

func TestProcessTurn_EngagedKeepsTalking(t *testing.T) {
	o, _, _ := newTestOrchestrator(grammarLearner())

	res, err := o.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", UserID: "u1", Topic: "travel", Turns: engagedTurns()})
	require.NoError(t, err)
	assert.Equal(t, engagement.UrgencyNone, res.Analysis.InterventionUrgency)
	assert.NotNil(t, res.Patterns)
	assert.Equal(t, coach.SourceFallback, res.Reply.Source)
	assert.Contains(t, res.Reply.Text, "travel")
}

func TestProcessTurn_QuietLearnerGetsCoaching(t *testing.T) {
	o, _, _ := newTestOrchestrator(grammarLearner())

	res, err := o.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", UserID: "u1", Topic: "travel", Turns: quietTurns()})
	require.NoError(t, err)
	assert.NotEqual(t, engagement.UrgencyNone, res.Analysis.InterventionUrgency)
	require.NotEmpty(t, res.Interventions.Immediate)
	assert.NotEmpty(t, res.Reply.Text)
	assert.NotContains(t, res.Reply.Text, "travel", "an urgent turn should get a coaching line, not a follow-up question")
}

func TestProcessTurn_DecliningTrendAddsPattern(t *testing.T) {
	r := grammarLearner()
	r.history["u1"] = []learner.SessionRecord{
		session(20, "travel", 0.85, 0.85),
		session(15, "food", 0.78, 0.78),
		session(10, "work", 0.72, 0.72),
		session(5, "family", 0.65, 0.65),
	}
	o, _, _ := newTestOrchestrator(r)

	res, err := o.ProcessTurn(context.Background(), TurnInput{SessionID: "s1", UserID: "u1", Turns: engagedTurns()})
	require.NoError(t, err)
	assert.Equal(t, trend.Declining, res.Trend.Trend)
	assert.True(t, res.Analysis.HasPattern(engagement.PatternDecliningPerformance))
	assert.NotEmpty(t, res.Interventions.LongTerm)
}

func TestProcessTurn_UnknownLearnerUsesDefaults(t *testing.T) {
	o, _, _ := newTestOrchestrator(grammarLearner())
	res, err := o.ProcessTurn(context.Background(), TurnInput{SessionID: "s9", UserID: "stranger", Turns: engagedTurns()})
	require.NoError(t, err)
	assert.Greater(t, res.Analysis.OverallEngagement, 0.0)
}

func TestProcessTurn_ReaderFailure(t *testing.T) {
	r := grammarLearner()
	r.err = errors.New("database is locked")
	o, _, _ := newTestOrchestrator(r)
	_, err := o.ProcessTurn(context.Background(), TurnInput{UserID: "u1", Turns: engagedTurns()})
	assert.Error(t, err)
}

func TestStartSession_PicksGoalSpecialist(t *testing.T) {
	o, states, _ := newTestOrchestrator(grammarLearner())
	ctx := context.Background()

	st, err := o.StartSession(ctx, StartInput{UserID: "u1"})
	require.NoError(t, err)
	assert.NotEmpty(t, st.SessionID)
	assert.Equal(t, persona.GrammarCoach, st.ActivePersona)

	stored, err := states.Get(ctx, st.SessionID)
	require.NoError(t, err)
	assert.Equal(t, st.ActivePersona, stored.ActivePersona)

	_, err = o.StartSession(ctx, StartInput{UserID: "u1", Persona: "pirate"})
	assert.True(t, errors.Is(err, persona.ErrUnknownPersona))
}

func TestPlanSession_UnknownSession(t *testing.T) {
	o, _, _ := newTestOrchestrator(grammarLearner())
	_, err := o.PlanSession(context.Background(), PlanInput{SessionID: "nope", UserID: "u1", Turns: quietTurns()})
	assert.True(t, errors.Is(err, persona.ErrUnknownSession), "err = %v", err)
}

func TestPlanSession_TransitionIsStored(t *testing.T) {
	o, states, _ := newTestOrchestrator(grammarLearner())
	ctx := context.Background()
	_, err := o.StartSession(ctx, StartInput{UserID: "u1", SessionID: "s1", Persona: persona.FriendlyTutor})
	require.NoError(t, err)

	res, err := o.PlanSession(ctx, PlanInput{
		SessionID: "s1",
		UserID:    "u1",
		Turns:     quietTurns(),
		Metrics:   learner.SessionMetrics{GrammarAccuracy: 0.3, FluencyScore: 0.9},
		Style:     persona.StyleExplicit,
	})
	require.NoError(t, err)
	assert.Equal(t, persona.ActionTransition, res.Decision.Action)
	require.NotNil(t, res.Transition)
	assert.NotEmpty(t, res.Transition.Message)

	stored, err := states.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, persona.GrammarCoach, stored.ActivePersona)
	assert.Equal(t, len(quietTurns()), stored.LastTransitionTurn)

	assert.NotEmpty(t, res.Topic.Topic)
	assert.Equal(t, coach.SourceFallback, res.Rationale.Source)
	assert.Equal(t, res.Topic.Reason, res.Rationale.Text)
}

func TestPlanSession_EngagedMaintains(t *testing.T) {
	o, states, _ := newTestOrchestrator(grammarLearner())
	ctx := context.Background()
	_, err := o.StartSession(ctx, StartInput{UserID: "u1", SessionID: "s1", Persona: persona.FriendlyTutor})
	require.NoError(t, err)

	res, err := o.PlanSession(ctx, PlanInput{SessionID: "s1", UserID: "u1", Turns: engagedTurns()})
	require.NoError(t, err)
	assert.Equal(t, persona.ActionMaintain, res.Decision.Action)
	assert.Nil(t, res.Transition)

	stored, err := states.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, persona.FriendlyTutor, stored.ActivePersona)
	assert.Equal(t, -1, stored.LastTransitionTurn)
}

func TestFinishSession(t *testing.T) {
	o, states, sessions := newTestOrchestrator(grammarLearner())
	ctx := context.Background()
	_, err := o.StartSession(ctx, StartInput{UserID: "u1", SessionID: "s1"})
	require.NoError(t, err)

	err = o.FinishSession(ctx, learner.SessionRecord{SessionID: "s1", UserID: "u1", Topic: "travel"})
	require.NoError(t, err)
	require.Len(t, sessions.records, 1)
	assert.Equal(t, persona.GrammarCoach, sessions.records[0].Persona)
	assert.Equal(t, t0, sessions.records[0].StartedAt)

	_, err = states.Get(ctx, "s1")
	assert.True(t, errors.Is(err, statestore.ErrNotFound))
}

func TestAnalyzeBatch(t *testing.T) {
	r := grammarLearner()
	o, _, _ := newTestOrchestrator(r)

	var batch []conversation.Transcript
	for i := 0; i < 9; i++ {
		turns := engagedTurns()
		if i%3 == 0 {
			turns = quietTurns()
		}
		batch = append(batch, conversation.Transcript{SessionID: fmt.Sprintf("s%d", i), UserID: "u1", Turns: turns})
	}

	results, err := o.AnalyzeBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, results, len(batch))
	for i, res := range results {
		assert.Equal(t, batch[i].SessionID, res.SessionID, "results keep input order")
		require.NotNil(t, res.Analysis)
		want := engagement.AnalyzeEngagement(batch[i].Turns, &learner.Profile{UserID: "u1", LearningGoals: []learner.Goal{learner.GoalGrammar, learner.GoalFluency}}, 0)
		assert.InDelta(t, want.OverallEngagement, res.Analysis.OverallEngagement, 1e-9)
	}
}

func TestAnalyzeBatch_PerItemErrors(t *testing.T) {
	r := grammarLearner()
	r.err = errors.New("boom")
	o, _, _ := newTestOrchestrator(r)

	results, err := o.AnalyzeBatch(context.Background(), []conversation.Transcript{{SessionID: "a", UserID: "u1"}})
	require.NoError(t, err)
	assert.Nil(t, results[0].Analysis)
	assert.Contains(t, results[0].Error, "boom")
}

func TestAnalyzeBatch_Canceled(t *testing.T) {
	o, _, _ := newTestOrchestrator(grammarLearner())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.AnalyzeBatch(ctx, []conversation.Transcript{{SessionID: "a", UserID: "u1", Turns: engagedTurns()}})
	assert.True(t, errors.Is(err, context.Canceled))
}
