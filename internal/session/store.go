package session

import (
	"strings"
	"sync"
)

// Store hands out per-auditor session state. States are created on first
// use and live for the process lifetime; auditor names are matched
// case-insensitively.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*State)}
}

// Session returns the state for an auditor, creating it on first use.
func (s *Store) Session(auditorName string) *State {
	key := strings.ToLower(strings.TrimSpace(auditorName))

	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[key]
	if !ok {
		state = New()
		s.sessions[key] = state
	}
	return state
}
