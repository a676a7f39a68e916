package mcp

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/huangsam/greenplate/core/algo"
)

// MaxSessions caps the number of open sessions; delete_session frees a slot.
const MaxSessions = 1024

// sessionStore holds one Preferences snapshot per session.
type sessionStore struct {
	mu       sync.Mutex
	base     algo.Preferences
	sessions map[string]algo.Preferences
}

func newSessionStore(base algo.Preferences) *sessionStore {
	return &sessionStore{base: base, sessions: make(map[string]algo.Preferences)}
}

// create opens a session seeded with the base preferences.
func (s *sessionStore) create() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= MaxSessions {
		return "", fmt.Errorf("session limit of %d reached, call delete_session to free one", MaxSessions)
	}
	id := uuid.NewString()
	s.sessions[id] = s.base
	return id, nil
}

// delete drops a session and its preferences.
func (s *sessionStore) delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("unknown session %q", id)
	}
	delete(s.sessions, id)
	return nil
}

// get returns the snapshot of a session, or the base preferences for an empty id.
func (s *sessionStore) get(id string) (algo.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		return s.base, nil
	}
	p, ok := s.sessions[id]
	if !ok {
		return algo.Preferences{}, fmt.Errorf("unknown session %q, call create_session first", id)
	}
	return p, nil
}

// update replaces a session snapshot with the result of fn. When fn fails the
// session keeps its previous snapshot.
func (s *sessionStore) update(id string, fn func(algo.Preferences) (algo.Preferences, error)) (algo.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.sessions[id]
	if !ok {
		return algo.Preferences{}, fmt.Errorf("unknown session %q, call create_session first", id)
	}
	next, err := fn(p)
	if err != nil {
		return p, err
	}
	s.sessions[id] = next
	return next, nil
}
