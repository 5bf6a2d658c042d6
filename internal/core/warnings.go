package core

import "sync"

// WarningStore tracks per-user warning counts for the lifetime of the
// process. Counts only ever increment; there is no reset operation.
//
// The store is passed into the engine explicitly so tests can use an
// isolated instance. Access is serialized with a mutex even though the
// update loop is single-threaded, so the store stays safe if dispatch ever
// becomes concurrent.
type WarningStore struct {
	mu     sync.Mutex
	counts map[int64]int
}

// NewWarningStore creates an empty warning store
func NewWarningStore() *WarningStore {
	return &WarningStore{
		counts: make(map[int64]int),
	}
}

// Increment adds one warning for the user and returns the new count.
// The entry is created lazily on first warn.
func (s *WarningStore) Increment(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[userID]++
	return s.counts[userID]
}

// Get returns the current warning count for the user, zero if absent
func (s *WarningStore) Get(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts[userID]
}
