package statestore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/persona"
)

var t0 = time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{"memory": NewMemory()}

	b, err := OpenBadger("", "test:")
	require.NoError(t, err)
	out["badger"] = b

	if addr := os.Getenv("VOXTUTOR_TEST_REDIS_ADDR"); addr != "" {
		r, err := OpenRedis(context.Background(), addr, 0, "voxtutor-test:"+t.Name()+":")
		require.NoError(t, err)
		out["redis"] = r
	}

	t.Cleanup(func() {
		for _, s := range out {
			s.Close()
		}
	})
	return out
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "s1")
			assert.True(t, errors.Is(err, ErrNotFound), "err = %v", err)

			st := persona.NewSessionState("s1", "u1", persona.FriendlyTutor, t0)
			require.NoError(t, s.Put(ctx, st))

			tr, err := persona.ExecuteTransition(persona.States{"s1": st}, "s1", persona.GrammarCoach, persona.StyleExplicit, 7, t0.Add(time.Minute))
			require.NoError(t, err)
			require.NoError(t, s.Put(ctx, tr.State))

			got, err := s.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, persona.GrammarCoach, got.ActivePersona)
			assert.Equal(t, 7, got.LastTransitionTurn)
			require.Len(t, got.Transitions, 1)
			assert.True(t, got.Transitions[0].At.Equal(t0.Add(time.Minute)))

			require.NoError(t, s.Put(ctx, persona.NewSessionState("s0", "u2", persona.ConversationPartner, t0)))
			all, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "s0", all[0].SessionID)

			require.NoError(t, s.Delete(ctx, "s1"))
			_, err = s.Get(ctx, "s1")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestPutRejectsEmptyID(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Put(context.Background(), persona.SessionState{}))
		})
	}
}

func TestLookupFeedsCoordinator(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, persona.NewSessionState("s1", "u1", persona.FriendlyTutor, t0)))

	lk := NewLookup(ctx, s)
	st, ok := lk.Get("s1")
	assert.True(t, ok)
	assert.Equal(t, persona.FriendlyTutor, st.ActivePersona)

	_, ok = lk.Get("missing")
	assert.False(t, ok)
	assert.NoError(t, lk.Err, "a missing session is not a lookup error")

	_, err := persona.Coordinate(lk, "missing", nil, learner.SessionMetrics{}, nil)
	assert.True(t, errors.Is(err, persona.ErrUnknownSession))
}

func TestMemoryReturnsCopies(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	st := persona.NewSessionState("s1", "u1", persona.FriendlyTutor, t0)
	st.Transitions = []persona.TransitionRecord{{From: "a", To: "b"}}
	require.NoError(t, s.Put(ctx, st))

	st.Transitions[0].To = "mutated"
	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Transitions[0].To)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"badger", Config{Backend: BackendBadger}, false},
		{"redis without addr", Config{Backend: BackendRedis}, true},
		{"redis", Config{Backend: BackendRedis, RedisAddr: "localhost:6379"}, false},
		{"unknown", Config{Backend: "etcd"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestOpenMemoryAndBadger(t *testing.T) {
	ctx := context.Background()
	m, err := Open(ctx, DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, m)

	b, err := Open(ctx, Config{Backend: BackendBadger, Path: t.TempDir(), KeyPrefix: "k:"})
	require.NoError(t, err)
	defer b.Close()
	assert.IsType(t, &Badger{}, b)
}
