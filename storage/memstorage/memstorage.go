// Package memstorage provides a map-backed Storage for tests and
// single-process use.
package memstorage

import (
	"context"
	"sort"
	"sync"

	"github.com/normcache/normcache"
)

var _ normcache.Storage = &storageHandler{}

// InMemoryStorage is a Storage with test-friendly extras.
type InMemoryStorage interface {
	normcache.Storage

	Len() int
	Seed(key, value string)
}

// New returns an empty in-memory storage.
func New() InMemoryStorage {
	return &storageHandler{
		values: make(map[string]string),
	}
}

type storageHandler struct {
	m      sync.Mutex
	values map[string]string
}

func (sh *storageHandler) Get(ctx context.Context, key string) (string, error) {
	sh.m.Lock()
	defer sh.m.Unlock()

	value, ok := sh.values[key]
	if !ok {
		return "", normcache.ErrValueMissing
	}

	return value, nil
}

func (sh *storageHandler) Set(ctx context.Context, key, value string) error {
	sh.m.Lock()
	defer sh.m.Unlock()

	sh.values[key] = value

	return nil
}

func (sh *storageHandler) Remove(ctx context.Context, key string) error {
	sh.m.Lock()
	defer sh.m.Unlock()

	delete(sh.values, key)

	return nil
}

func (sh *storageHandler) Clear(ctx context.Context) error {
	sh.m.Lock()
	defer sh.m.Unlock()

	sh.values = make(map[string]string)

	return nil
}

func (sh *storageHandler) Keys(ctx context.Context) ([]string, error) {
	sh.m.Lock()
	defer sh.m.Unlock()

	keys := make([]string, 0, len(sh.values))
	for key := range sh.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys, nil
}

func (sh *storageHandler) Len() int {
	sh.m.Lock()
	defer sh.m.Unlock()

	return len(sh.values)
}

// Seed stores a value without going through the cache, for pre-populating
// storage in tests.
func (sh *storageHandler) Seed(key, value string) {
	sh.m.Lock()
	defer sh.m.Unlock()

	sh.values[key] = value
}
