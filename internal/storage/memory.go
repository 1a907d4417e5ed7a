package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It counts writes and can be made to fail,
// which makes it the store of choice in engine tests.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
	writes int
	err    error
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// FailWith makes every later call return err; nil restores normal operation
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Writes returns how many Set, SetMany and Delete calls succeeded
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Snapshot returns a copy of every stored pair
func (m *Memory) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	return m.SetMany(ctx, map[string]string{key: value})
}

func (m *Memory) SetMany(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for k, v := range values {
		m.values[k] = v
	}
	m.writes++
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	m.writes++
	return nil
}
