package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/abhisek/voxtutor/internal/persona"
)

// Memory is an in-process Store. Values are stored encoded so callers never
// share slices with the stored copy.
type Memory struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{states: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, sessionID string) (persona.SessionState, error) {
	m.mu.RLock()
	raw, ok := m.states[sessionID]
	m.mu.RUnlock()
	if !ok {
		return persona.SessionState{}, fmt.Errorf("%s: %w", sessionID, ErrNotFound)
	}
	return decode(raw)
}

func (m *Memory) Put(_ context.Context, st persona.SessionState) error {
	raw, err := encode(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.states[st.SessionID] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.states, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context) ([]persona.SessionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]persona.SessionState, 0, len(m.states))
	for _, raw := range m.states {
		st, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	sortStates(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }

func encode(st persona.SessionState) ([]byte, error) {
	if st.SessionID == "" {
		return nil, fmt.Errorf("statestore: empty session id")
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode session state: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) (persona.SessionState, error) {
	var st persona.SessionState
	if err := json.Unmarshal(raw, &st); err != nil {
		return st, fmt.Errorf("decode session state: %w", err)
	}
	return st, nil
}
