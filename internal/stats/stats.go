// Package stats provides the in-memory play-count store shown by /stats.
// The counter is intentionally ephemeral: it resets on restart and is not
// shared across instances.
package stats

import "sync"

// Store counts game starts per Telegram user.
type Store interface {
	// Increment bumps the play count for a user, remembering the latest
	// username, and returns the new count.
	Increment(userID int64, username string) int
	// Get returns the recorded username and play count. ok is false when
	// the user has no recorded plays.
	Get(userID int64) (username string, count int, ok bool)
}

type entry struct {
	username  string
	playCount int
}

// MemoryStore is the process-local Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]*entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int64]*entry)}
}

// Increment bumps the play count for a user.
func (s *MemoryStore) Increment(userID int64, username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &entry{}
		s.entries[userID] = e
	}
	if username != "" {
		e.username = username
	}
	e.playCount++
	return e.playCount
}

// Get returns the recorded username and play count for a user.
func (s *MemoryStore) Get(userID int64) (string, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[userID]
	if !ok {
		return "", 0, false
	}
	return e.username, e.playCount, true
}
