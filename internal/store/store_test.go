package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/voxtutor/internal/learner"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	var fk string
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, "1", fk)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.ProfileRepo().SaveUserProfile(ctx, learner.Profile{UserID: "u1", CurrentLevel: learner.LevelAdvanced}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	p, err := s.ProfileRepo().GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, learner.LevelAdvanced, p.CurrentLevel)
}

func TestProfileRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	_, err := repo.GetUserProfile(ctx, "nobody")
	assert.True(t, errors.Is(err, ErrProfileNotFound), "err = %v", err)

	want := learner.Profile{
		UserID:          "u1",
		CurrentLevel:    learner.LevelIntermediate,
		LearningGoals:   []learner.Goal{learner.GoalGrammar, learner.GoalFluency},
		PreferredTopics: []string{"travel", "food"},
		Progress:        learner.ProgressMetrics{GrammarProgress: 0.4, ConfidenceLevel: 0.6, SessionsCompleted: 7},
	}
	require.NoError(t, repo.SaveUserProfile(ctx, want))

	got, err := repo.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	want.CurrentLevel = learner.LevelUpperIntermediate
	want.PreferredTopics = nil
	require.NoError(t, repo.SaveUserProfile(ctx, want))

	got, err = repo.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, learner.LevelUpperIntermediate, got.CurrentLevel)
	assert.Empty(t, got.PreferredTopics)
}

func TestSaveProfileRequiresUserID(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.ProfileRepo().SaveUserProfile(context.Background(), learner.Profile{}))
}

func TestSessionHistoryOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Appended out of order on purpose.
	for i, day := range []int{2, 0, 3, 1} {
		require.NoError(t, repo.AppendSession(ctx, learner.SessionRecord{
			SessionID: "s" + string(rune('a'+i)),
			UserID:    "u1",
			Topic:     "travel",
			StartedAt: base.AddDate(0, 0, day),
			Metrics:   learner.SessionMetrics{GrammarAccuracy: 0.5 + float64(day)/10, FluencyScore: 0.7},
		}))
	}
	require.NoError(t, repo.AppendSession(ctx, learner.SessionRecord{SessionID: "other", UserID: "u2", StartedAt: base}))

	all, err := repo.GetSessionHistory(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].StartedAt.Before(all[i].StartedAt), "history not oldest first")
	}
	assert.InDelta(t, 0.5, all[0].Metrics.GrammarAccuracy, 1e-9)

	recent, err := repo.GetSessionHistory(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, base.AddDate(0, 0, 2), recent[0].StartedAt)
	assert.Equal(t, base.AddDate(0, 0, 3), recent[1].StartedAt)

	err = repo.AppendSession(ctx, learner.SessionRecord{SessionID: "sa", UserID: "u1", StartedAt: base})
	assert.Error(t, err, "duplicate session id should fail")
}

func TestReaderCombinesRepos(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ProfileRepo().SaveUserProfile(ctx, learner.Profile{UserID: "u1"}))
	require.NoError(t, s.SessionRepo().AppendSession(ctx, learner.SessionRecord{SessionID: "x", UserID: "u1", StartedAt: time.Now()}))

	r := s.Reader()
	p, err := r.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, learner.LevelBeginner, p.CurrentLevel)

	h, err := r.GetSessionHistory(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, h, 1)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, purpose := range []string{"coach", "coach", "continuation"} {
		require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock-model",
			Purpose:      purpose,
			InputTokens:  12,
			OutputTokens: 8,
			LatencyMs:    40,
			Success:      true,
			RequestBody:  `{"system":"s"}`,
			ResponseBody: `{"message":"hi"}`,
		}))
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "continuation", events[0].Purpose, "newest first")
	assert.Greater(t, events[0].Sequence, events[1].Sequence)

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Before: events[0].Sequence})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, events[1].ID, limited[0].ID)

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: events[1].Sequence})
	require.NoError(t, err)
	assert.Len(t, after, 1)

	coachOnly, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "coach"})
	require.NoError(t, err)
	assert.Len(t, coachOnly, 2)

	failed, err := repo.QueryLLMEvents(ctx, QueryOpts{FailedOnly: true})
	require.NoError(t, err)
	assert.Empty(t, failed)

	ev, err := repo.GetLLMEvent(ctx, events[2].ID)
	require.NoError(t, err)
	assert.Equal(t, `{"message":"hi"}`, ev.ResponseBody)
	assert.True(t, ev.Success)

	_, err = repo.GetLLMEvent(ctx, 9999)
	assert.True(t, errors.Is(err, ErrEventNotFound))
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	empty, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	calls := []LLMRequestEventData{
		{Model: "m-a", Purpose: "coach", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
		{Model: "m-a", Purpose: "coach", InputTokens: 20, OutputTokens: 5, LatencyMs: 300, Success: true},
		{Model: "m-b", Purpose: "plan-rationale", InputTokens: 7, OutputTokens: 3, LatencyMs: 50},
	}
	for _, c := range calls {
		require.NoError(t, repo.AppendLLMRequest(ctx, c))
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LLMUsageStats{
		{Purpose: "coach", Calls: 2, InputTokens: 30, OutputTokens: 10, AvgLatencyMs: 200},
		{Purpose: "plan-rationale", Calls: 1, InputTokens: 7, OutputTokens: 3, AvgLatencyMs: 50},
	}, byPurpose)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ModelUsageStats{
		{Model: "m-a", Calls: 2, InputTokens: 30, OutputTokens: 10},
		{Model: "m-b", Calls: 1, InputTokens: 7, OutputTokens: 3},
	}, byModel)
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.seq.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SessionRepo().AppendSession(ctx, learner.SessionRecord{SessionID: "s", UserID: "u", StartedAt: time.Now()}))
	b, err := s.seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, a+2, b)
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "db.sqlite")
	t.Setenv("VOXTUTOR_DB", p)
	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"a.db?_pragma=foreign_keys%281%29&_pragma=journal_mode%28WAL%29&_pragma=busy_timeout%285000%29&_pragma=synchronous%28NORMAL%29",
		dsn("a.db"))
	got := dsn("file:a.db?_pragma=busy_timeout(100)")
	assert.Contains(t, got, "busy_timeout(100)")
	assert.NotContains(t, got, "busy_timeout%285000%29")
	assert.Contains(t, got, "&_pragma=foreign_keys")
}
