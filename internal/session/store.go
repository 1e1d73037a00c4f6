// Package session provides the session-scoped key/value storage used by the
// simulator and the wizard, plus the signed tokens identifying a session.
package session

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store is the persistence surface: string values under string keys.
type Store interface {
	// Get returns the value and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryStore keeps values in process memory. A zero TTL never expires.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]memoryEntry
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]memoryEntry),
	}
}

// Get returns the value stored under key unless it expired.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expires.IsZero() && m.now().After(entry.expires) {
		delete(m.data, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key, refreshing its expiry.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: value}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	m.data[key] = entry
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Len returns the number of stored keys, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// KeyPrefix returns the prefix under which a session's keys live.
func KeyPrefix(sessionID string) string {
	return "session:" + sessionID + ":"
}

type scopedStore struct {
	inner  Store
	prefix string
}

// Scope returns a Store whose keys are confined to one session.
func Scope(store Store, sessionID string) Store {
	return &scopedStore{inner: store, prefix: KeyPrefix(sessionID)}
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scopedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}

// SessionID returns the session a scoped store belongs to, or "" for an unscoped store.
func SessionID(store Store) string {
	if s, ok := store.(*scopedStore); ok {
		return strings.TrimSuffix(strings.TrimPrefix(s.prefix, "session:"), ":")
	}
	return ""
}
