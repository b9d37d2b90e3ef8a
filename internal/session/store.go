package session

import (
	"sync"
	"time"
)

// Store is an in-memory session map keyed by session id. The store itself
// is safe for concurrent use; individual sessions are expected to be driven
// by one caller at a time, so their fields carry no lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// GetOrCreate returns the session for sessionID, creating it in the initial
// phase on first reference. Repeated calls with the same id return the same
// instance; the workflow id of an existing session is never overwritten.
func (s *Store) GetOrCreate(sessionID, workflowID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	sess := &Session{
		ID:                     sessionID,
		WorkflowID:             workflowID,
		CurrentPhase:           PhaseInitial,
		ClarificationResponses: make(map[string]any),
		SelectionResponses:     make(map[string][]string),
		PreviewResponses:       make(map[string]bool),
		CreatedAt:              s.now(),
	}
	s.sessions[sessionID] = sess
	return sess
}

// Get returns the session for sessionID if it exists.
func (s *Store) Get(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	return sess, ok
}

// Reset discards all sessions. Used between test runs; unconditional.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*Session)
}

// List returns a summary of every session for diagnostics. The result is
// never nil so it serializes as a JSON array.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, Summary{
			SessionID:    sess.ID,
			WorkflowID:   sess.WorkflowID,
			CurrentPhase: sess.CurrentPhase,
			CreatedAt:    float64(sess.CreatedAt.UnixNano()) / float64(time.Second),
		})
	}
	return out
}
