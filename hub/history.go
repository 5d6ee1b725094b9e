package hub

import (
	"sync"

	"github.com/vaibhavi8/autoplay/core"
)

// HistoryStore persists the append-only commentary log. The hub assigns
// sequence numbers before Append; stores only record and return entries.
type HistoryStore interface {
	// Append records one entry. A failed append must leave the store
	// unchanged: the hub relies on this to keep sequence numbers gapless.
	Append(e core.CommentaryEntry) error

	// History returns the most recent entries in ascending sequence
	// order. limit <= 0 returns everything.
	History(limit int) ([]core.CommentaryEntry, error)

	// LastSeq returns the highest recorded sequence number, 0 when the
	// store is empty.
	LastSeq() (uint64, error)
}

// InMemoryStore is a volatile HistoryStore backed by a process-local slice.
// Safe for concurrent access; the default store for a session's lifetime.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []core.CommentaryEntry
}

// NewInMemoryStore constructs an empty in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Append implements HistoryStore.
func (s *InMemoryStore) Append(e core.CommentaryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

// History implements HistoryStore.
func (s *InMemoryStore) History(limit int) ([]core.CommentaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.entries) > limit {
		start = len(s.entries) - limit
	}
	out := make([]core.CommentaryEntry, len(s.entries)-start)
	copy(out, s.entries[start:])
	return out, nil
}

// LastSeq implements HistoryStore.
func (s *InMemoryStore) LastSeq() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return 0, nil
	}
	return s.entries[len(s.entries)-1].Seq, nil
}
