package infrastructure

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend keeps collections in process memory. Used for demos and tests.
type MemoryBackend struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	saves map[string]int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		docs:  make(map[string][]byte),
		saves: make(map[string]int),
	}
}

func (b *MemoryBackend) Load(_ context.Context, collection string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.docs[collection]), nil
}

func (b *MemoryBackend) Save(_ context.Context, collection string, document []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[collection] = slices.Clone(document)
	b.saves[collection]++
	return nil
}

// Saves reports how many times a collection was written.
func (b *MemoryBackend) Saves(collection string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.saves[collection]
}

func (b *MemoryBackend) Close() error {
	return nil
}
