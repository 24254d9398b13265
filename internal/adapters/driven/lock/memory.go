// Package lock serialises writers per collection.
//
// Memory guards collections within one process. File adds an advisory file
// lock per collection so separate processes sharing a data directory (for
// example the watch command and a one-off ingest) also take turns.
package lock

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Memory implements the interface.
var _ driven.CollectionLocker = (*Memory)(nil)

// Memory is an in-process keyed lock.
// Different collections never block each other.
type Memory struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewMemory creates an in-process locker.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string]chan struct{})}
}

// Lock blocks until the collection is free or ctx is done.
func (m *Memory) Lock(ctx context.Context, collection string) (func(), error) {
	slot := m.slot(collection)
	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Memory) slot(collection string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[collection]
	if !ok {
		slot = make(chan struct{}, 1)
		m.slots[collection] = slot
	}
	return slot
}
