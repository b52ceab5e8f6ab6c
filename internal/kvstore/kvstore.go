// Package kvstore defines the persisted key-value cache that holds the
// activity log and streak state, independently of the Ledger Store.
package kvstore

import (
	"context"
	"sync"
)

type Store interface {
	// GetItem returns ok=false when the key has never been set.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Memory is a Store kept in process memory.
type Memory struct {
	mu    sync.Mutex
	items map[string]string

	// Fail, when set, is consulted before every operation.
	Fail func(op, key string) error
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		if err := m.Fail("GetItem", key); err != nil {
			return "", false, err
		}
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		if err := m.Fail("SetItem", key); err != nil {
			return err
		}
	}
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		if err := m.Fail("RemoveItem", key); err != nil {
			return err
		}
	}
	delete(m.items, key)
	return nil
}
