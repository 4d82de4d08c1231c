package state

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store. Values are copied in and out by
// assignment, so callers must not share slices between sessions they mutate.
type MemoryStore[T any] struct {
	mu       sync.RWMutex
	sessions map[int64]T
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{sessions: make(map[int64]T)}
}

// Get returns the session for a user if it exists.
func (m *MemoryStore[T]) Get(_ context.Context, userID int64) (T, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok, nil
}

// Put replaces the session for a user.
func (m *MemoryStore[T]) Put(_ context.Context, userID int64, session T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = session
	return nil
}

// Clear removes the session for a user.
func (m *MemoryStore[T]) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Len reports the number of live sessions.
func (m *MemoryStore[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
