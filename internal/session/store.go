// package session implements credential storage keyed by session and platform.
package session

import (
	"sync"

	"github.com/desertthunder/blastoff/internal/models"
)

// Store holds per-session, per-platform credentials. Implementations must be
// safe for concurrent use; the HTTP layer calls them from multiple requests.
type Store interface {
	// Get retrieves the credential for a session/platform pair, or nil when absent.
	Get(sessionID, platform string) (*models.Credential, error)

	// Set commits a credential for a session/platform pair, replacing any existing one.
	Set(sessionID, platform string, cred *models.Credential) error

	// Clear removes the credential for a session/platform pair. Clearing an
	// absent entry is not an error.
	Clear(sessionID, platform string) error
}

// MemoryStore is the process-lifetime Store. Credentials vanish on restart,
// which is the documented scope of this single-operator tool.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[storeKey]*models.Credential
}

type storeKey struct {
	session  string
	platform string
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[storeKey]*models.Credential)}
}

// Get retrieves the credential for a session/platform pair.
func (s *MemoryStore) Get(sessionID, platform string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[storeKey{sessionID, platform}]
	if !ok {
		return nil, nil
	}
	clone := *cred
	return &clone, nil
}

// Set commits a credential for a session/platform pair.
func (s *MemoryStore) Set(sessionID, platform string, cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *cred
	s.creds[storeKey{sessionID, platform}] = &clone
	return nil
}

// Clear removes the credential for a session/platform pair.
func (s *MemoryStore) Clear(sessionID, platform string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.creds, storeKey{sessionID, platform})
	return nil
}
