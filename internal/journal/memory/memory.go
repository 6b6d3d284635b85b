package memory

import (
	"context"
	"sync"

	"trenerka/internal/core"
	"trenerka/internal/journal"
)

var _ journal.Store = (*Store)(nil)

// Store keeps the session log and the live draft for the process lifetime.
type Store struct {
	mu       sync.Mutex
	draft    core.Draft
	sessions []core.Session
}

func New() *Store {
	return &Store{draft: core.NewDraft()}
}

// UpdateDraftField sets one draft field. Committed sessions are untouched.
func (s *Store) UpdateDraftField(_ context.Context, field core.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Set(field, value)
}

// Draft returns a copy of the live draft.
func (s *Store) Draft(_ context.Context) (core.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft, nil
}

// AddSession freezes the draft into a session, appends it and resets the
// draft to defaults.
func (s *Store) AddSession(_ context.Context) (core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.draft.Commit()
	s.sessions = append(s.sessions, session)
	s.draft = core.NewDraft()
	return session, nil
}

// Sessions returns a copy of the log in insertion order.
func (s *Store) Sessions(_ context.Context) ([]core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Session(nil), s.sessions...), nil
}

