// Package inmemory provides a process-local DeltaStore.
package inmemory

import (
	"context"
	"sync"

	"github.com/and161185/pgsql-check/model"
)

type MemStorage struct {
	records map[string]model.DeltaRecord
	mu      sync.RWMutex
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		records: make(map[string]model.DeltaRecord),
	}
}

func (store *MemStorage) Load(ctx context.Context, id model.Identity) (*model.DeltaRecord, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	rec, ok := store.records[id.Key()]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (store *MemStorage) Save(ctx context.Context, id model.Identity, rec model.DeltaRecord) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.records[id.Key()] = rec
	return nil
}

// Len returns the number of stored identities.
func (store *MemStorage) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return len(store.records)
}
