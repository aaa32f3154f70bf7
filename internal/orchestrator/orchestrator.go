// Package orchestrator runs the tutor's decision pipeline for live sessions.
// It loads learner data, calls the pure decision packages, persists the
// caller-owned coordination state and asks the coach for the words to say.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/voxtutor/internal/coach"
	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/persona"
	"github.com/abhisek/voxtutor/internal/planner"
	"github.com/abhisek/voxtutor/internal/statestore"
	"github.com/abhisek/voxtutor/internal/store"
)

// DefaultHistoryLimit is how many past sessions are loaded per decision.
const DefaultHistoryLimit = 50

// Deps are the orchestrator's collaborators. Profiles and States are
// required; Sessions is only needed to finish sessions.
type Deps struct {
	Analyzer    *engagement.Analyzer
	Planner     *planner.Planner
	Coordinator *persona.Coordinator
	Coach       *coach.Coach
	Profiles    store.ProfileReader
	Sessions    store.SessionRepo
	States      statestore.Store
	Log         *zap.Logger

	// Workers bounds AnalyzeBatch parallelism.
	Workers      int
	HistoryLimit int
	Now          func() time.Time
}

// Orchestrator is safe for concurrent use across sessions. Turns for the
// same session must be processed in order by the caller.
type Orchestrator struct {
	analyzer *engagement.Analyzer
	planner  *planner.Planner
	coord    *persona.Coordinator
	coach    *coach.Coach
	profiles store.ProfileReader
	sessions store.SessionRepo
	states   statestore.Store
	log      *zap.Logger
	workers  int
	limit    int
	now      func() time.Time
}

// New builds an orchestrator, filling unset collaborators with defaults.
func New(d Deps) *Orchestrator {
	o := &Orchestrator{
		analyzer: d.Analyzer,
		planner:  d.Planner,
		coord:    d.Coordinator,
		coach:    d.Coach,
		profiles: d.Profiles,
		sessions: d.Sessions,
		states:   d.States,
		log:      d.Log,
		workers:  d.Workers,
		limit:    d.HistoryLimit,
		now:      d.Now,
	}
	if o.analyzer == nil {
		o.analyzer = engagement.NewAnalyzer(engagement.DefaultWeights())
	}
	if o.planner == nil {
		o.planner = planner.New(planner.DefaultWeights())
	}
	if o.coord == nil {
		o.coord = persona.NewCoordinator(persona.DefaultThresholds(), o.analyzer)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.coach == nil {
		o.coach = coach.New(nil, coach.DefaultConfig(), nil, o.log)
	}
	if o.states == nil {
		o.states = statestore.NewMemory()
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.limit <= 0 {
		o.limit = DefaultHistoryLimit
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// learnerData loads the profile and history for userID. A missing profile
// yields the default profile; a missing reader yields empty data.
func (o *Orchestrator) learnerData(ctx context.Context, userID string) (*learner.Profile, []learner.SessionRecord, error) {
	def := learner.DefaultProfile(userID)
	if o.profiles == nil || userID == "" {
		return &def, nil, nil
	}

	p, err := o.profiles.GetUserProfile(ctx, userID)
	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		o.log.Debug("no stored profile, using defaults", zap.String("user_id", userID))
		p = &def
	case err != nil:
		return nil, nil, fmt.Errorf("load profile %q: %w", userID, err)
	}

	history, err := o.profiles.GetSessionHistory(ctx, userID, o.limit)
	if err != nil {
		return nil, nil, fmt.Errorf("load history %q: %w", userID, err)
	}
	return p, history, nil
}
