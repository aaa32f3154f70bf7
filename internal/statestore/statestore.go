// Package statestore persists the caller-owned persona coordination state
// between turns. The decision packages never touch it directly; the
// orchestrator reads a session's state, hands it to the coordinator through
// a persona.Lookup, and saves whatever comes back.
package statestore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/abhisek/voxtutor/internal/persona"
)

// ErrNotFound is returned when no state exists for a session.
var ErrNotFound = errors.New("statestore: session state not found")

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Store holds session coordination state keyed by session ID.
type Store interface {
	Get(ctx context.Context, sessionID string) (persona.SessionState, error)
	Put(ctx context.Context, st persona.SessionState) error
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]persona.SessionState, error)
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`       // badger directory; empty runs in memory
	RedisAddr string `yaml:"redis_addr"` // host:port
	RedisDB   int    `yaml:"redis_db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// DefaultConfig keeps state in process memory.
func DefaultConfig() Config {
	return Config{Backend: BackendMemory, KeyPrefix: "voxtutor:session:"}
}

// Validate checks the backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendBadger:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("state.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown state backend %q (want memory, badger or redis)", c.Backend)
	}
	return nil
}

// Open creates the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendBadger:
		return OpenBadger(cfg.Path, cfg.KeyPrefix)
	case BackendRedis:
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.KeyPrefix)
	}
	return NewMemory(), nil
}

// Lookup adapts a Store to persona.Lookup for a single coordination call.
// Lookup errors other than ErrNotFound are reported through Err.
type Lookup struct {
	ctx   context.Context
	store Store
	Err   error
}

// NewLookup returns a persona.Lookup backed by s.
func NewLookup(ctx context.Context, s Store) *Lookup {
	return &Lookup{ctx: ctx, store: s}
}

// Get implements persona.Lookup.
func (l *Lookup) Get(sessionID string) (persona.SessionState, bool) {
	st, err := l.store.Get(l.ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.Err = err
		}
		return persona.SessionState{}, false
	}
	return st, true
}

func sortStates(states []persona.SessionState) {
	sort.Slice(states, func(i, j int) bool { return states[i].SessionID < states[j].SessionID })
}
