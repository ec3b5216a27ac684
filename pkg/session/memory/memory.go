// Package memory provides an in-memory session.Store for tests and
// single-process development. The auth service is not part of dev
// setups, so sessions are seeded directly with Put.
package memory

import (
	"context"
	"sync"

	"github.com/taskgate/taskgate/pkg/session"
)

// Store holds sessions keyed by token hash.
type Store struct {
	mu       sync.RWMutex
	byDigest map[string]session.Session
}

// Ensure Store implements session.Store at compile time.
var _ session.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{byDigest: make(map[string]session.Session)}
}

// Put seeds a session. Later puts with the same token hash replace
// earlier ones, mirroring the unique constraint on the real table.
func (s *Store) Put(sess session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDigest[sess.TokenHash] = sess
}

// FindByTokenHash returns a copy of the matching session or
// session.ErrNoSession.
func (s *Store) FindByTokenHash(_ context.Context, digest string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byDigest[digest]
	if !ok {
		return nil, session.ErrNoSession
	}
	return &sess, nil
}
