package session

import (
	"context"
	"maps"
	"sync"
)

// Persisted entry names. All four are written together on every session
// update and removed together on clear; readers must treat a record missing
// any of them as no session at all.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyIsAdmin  = "is_admin"
	KeyToken    = "access_token"
)

// Persistence is the durable key-value contract behind the session store.
// Implementations persist whole records: Save replaces everything previously
// stored, Clear removes everything. The store never reads through to
// persistence after hydration; the in-memory mirror is authoritative.
type Persistence interface {
	// Save atomically replaces the persisted record with entries.
	Save(ctx context.Context, entries map[string]string) error

	// Load returns the persisted record, or an empty map when none exists.
	Load(ctx context.Context) (map[string]string, error)

	// Clear removes the persisted record. Clearing an absent record is not
	// an error.
	Clear(ctx context.Context) error
}

// MemoryPersistence is a Persistence kept entirely in process memory. It
// backs tests and ephemeral sessions that should not outlive the process.
type MemoryPersistence struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryPersistence creates an empty in-memory persistence.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{}
}

func (m *MemoryPersistence) Save(ctx context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]string, len(entries))
	maps.Copy(m.entries, entries)
	return nil
}

func (m *MemoryPersistence) Load(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make(map[string]string, len(m.entries))
	maps.Copy(entries, m.entries)
	return entries, nil
}

func (m *MemoryPersistence) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	return nil
}
