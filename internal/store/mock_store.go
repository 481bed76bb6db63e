// ABOUTME: Mock Slot implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject write failures

package store

import (
	"context"
	"sync"
)

var _ Slot = (*MockStore)(nil)

// MockStore is an in-memory Slot implementation for testing.
type MockStore struct {
	mu       sync.RWMutex
	values   map[string][]byte
	writeErr error
	getErr   error
	puts     int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		values: make(map[string][]byte),
	}
}

// FailWrites makes every subsequent Put and Delete return err. Pass nil to
// restore normal behavior.
func (m *MockStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// FailReads makes every subsequent Get return err.
func (m *MockStore) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// Get retrieves a copy of the value stored under key.
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores a copy of value under key.
func (m *MockStore) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	// Make a copy to avoid external modification
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	m.puts++
	return nil
}

// Delete removes key.
func (m *MockStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.values, key)
	return nil
}

// Raw returns the bytes stored under key, for test assertions.
func (m *MockStore) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Puts returns how many successful writes happened.
func (m *MockStore) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}
