package sessions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long a session stays valid after login.
const DefaultTTL = 7 * 24 * time.Hour

// session tracks when a login happened and when it stops being valid
type session struct {
	createdAt time.Time
	expiresAt time.Time
}

// Store keeps authenticated sessions in memory. Sessions do not survive a
// restart, which forces a fresh login, and expired entries are dropped
// lazily on verification and eagerly by the purge job.
type Store struct {
	mu       sync.Mutex
	sessions map[string]session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a session store with the given TTL. A nil now function
// defaults to the system clock.
func NewStore(ttl time.Duration, now func() time.Time) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: make(map[string]session),
		ttl:      ttl,
		now:      now,
	}
}

// Create registers a new session and returns its identifier.
func (s *Store) Create() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	id := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sessions[id] = session{
		createdAt: now,
		expiresAt: now.Add(s.ttl),
	}
	return id, nil
}

// Verify reports whether a session identifier is known and unexpired.
// Expired sessions are removed on sight.
func (s *Store) Verify(id string) bool {
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return false
	}
	if s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return false
	}
	return true
}

// Destroy removes a session. Unknown identifiers are a no-op.
func (s *Store) Destroy(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// PurgeExpired removes all expired sessions and returns how many were
// dropped.
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged
}

// Count returns the number of live entries, expired or not.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
