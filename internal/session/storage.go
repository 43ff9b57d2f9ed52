package session

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Persisted keys. The store owns exactly these two.
const (
	TokenKey = "auth_token"
	UserKey  = "user_data"
)

// Storage is the key-value backend that keeps a session alive for the
// lifetime of one terminal session.
//
// SetAll must apply all values or none, so token and user never diverge.
type Storage interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetAll writes every key in values.
	SetAll(ctx context.Context, values map[string]string) error

	// Delete removes the keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Name identifies the backend in logs and errors.
	Name() string
}

// DefaultScope names the storage slot for the current terminal.
// HIS_SESSION_SCOPE wins; otherwise the parent process (the shell) is used,
// so every terminal tab gets its own session and closing it abandons it.
func DefaultScope() string {
	if scope := os.Getenv("HIS_SESSION_SCOPE"); scope != "" {
		return scope
	}
	return fmt.Sprintf("tty-%d", os.Getppid())
}

// MemoryStorage keeps values for the lifetime of the process.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-process storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get implements Storage.
func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// SetAll implements Storage.
func (m *MemoryStorage) SetAll(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

// Delete implements Storage.
func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Name implements Storage.
func (m *MemoryStorage) Name() string {
	return "memory"
}

// Len reports how many keys are stored.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
