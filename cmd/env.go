package cmd

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/voxtutor/internal/coach"
	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/llm"
	"github.com/abhisek/voxtutor/internal/orchestrator"
	"github.com/abhisek/voxtutor/internal/persona"
	"github.com/abhisek/voxtutor/internal/planner"
	"github.com/abhisek/voxtutor/internal/statestore"
	"github.com/abhisek/voxtutor/internal/store"
)

// env is the wired dependency graph shared by the commands.
type env struct {
	store    *store.Store
	states   statestore.Store
	analyzer *engagement.Analyzer
	planner  *planner.Planner
	coord    *persona.Coordinator
	orch     *orchestrator.Orchestrator
}

// openEnv opens the store and state backend and builds the pipeline from
// the loaded config. The caller must Close the result.
func openEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()

	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	states, err := statestore.Open(ctx, cfg.State)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open state store: %w", err)
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
	if err != nil {
		log.Warn("LLM provider not configured, coaching uses fallback phrases", zap.Error(err))
		provider = nil
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	az := engagement.NewAnalyzer(cfg.Engagement)
	pl := planner.New(cfg.Planner)
	coord := persona.NewCoordinator(cfg.Persona, az)

	e := &env{
		store:    st,
		states:   states,
		analyzer: az,
		planner:  pl,
		coord:    coord,
	}
	e.orch = orchestrator.New(orchestrator.Deps{
		Analyzer:    az,
		Planner:     pl,
		Coordinator: coord,
		Coach:       coach.New(provider, cfg.Coach, rand.New(rand.NewSource(seed)), log),
		Profiles:    st.Reader(),
		Sessions:    st.SessionRepo(),
		States:      states,
		Log:         log,
		Workers:     cfg.Workers,
	})
	return e, nil
}

// Close releases the state backend and the database.
func (e *env) Close() error {
	return errors.Join(e.states.Close(), e.store.Close())
}
