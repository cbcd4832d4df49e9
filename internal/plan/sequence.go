package plan

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Sequencer hands out request-generation tokens. Every submission from a
// client gets a new token, and only results carrying the client's latest
// token may be shown. Tokens increase monotonically across all clients.
type Sequencer struct {
	mu     sync.Mutex
	next   uint64
	latest *lru.Cache[string, uint64]
}

// NewSequencer tracks the latest token of up to size clients. The least
// recently active client is forgotten first.
func NewSequencer(size int) (*Sequencer, error) {
	cache, err := lru.New[string, uint64](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create sequence cache: %w", err)
	}
	return &Sequencer{latest: cache}, nil
}

// Issue returns a new token for clientID and makes it the current one.
func (s *Sequencer) Issue(clientID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.latest.Add(clientID, s.next)
	return s.next
}

// IsCurrent reports whether seq is still the latest token issued to clientID.
func (s *Sequencer) IsCurrent(clientID string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, ok := s.latest.Peek(clientID)
	return ok && latest == seq
}

// Forget drops the token of clientID once it can no longer receive results.
func (s *Sequencer) Forget(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest.Remove(clientID)
}
