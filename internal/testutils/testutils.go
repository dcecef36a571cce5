// Package testutils provides setup helpers shared by this module's tests.
package testutils

import (
	"context"
	"testing"

	"github.com/normcache/normcache"
	"github.com/normcache/normcache/storage/memstorage"
)

// SetupCache returns a cache over a fresh in-memory storage.
func SetupCache(t *testing.T, opts ...normcache.Option) (context.Context, *normcache.Cache, memstorage.InMemoryStorage) {
	t.Helper()

	ctx := context.Background()
	storage := memstorage.New()

	cache, err := normcache.New(storage, opts...)
	if err != nil {
		t.Fatal(err)
	}

	return ctx, cache, storage
}

// Fetcher stands in for the network-fetch collaborator of the query layer.
// It counts invocations and returns canned data.
type Fetcher struct {
	Count int
	Data  map[string]interface{}
}

func (f *Fetcher) Fetch() map[string]interface{} {
	f.Count++
	return f.Data
}

// ReadThrough drives the loop the query layer runs against the cache:
// read, and on a miss fetch once, write the fetched data back and read
// again.
func ReadThrough(ctx context.Context, t *testing.T, cache *normcache.Cache, readID string, plan *normcache.Plan, f *Fetcher) *normcache.Result {
	t.Helper()

	res, err := cache.Read(ctx, readID, plan)
	if err != nil {
		t.Fatal(err)
	}
	if res.Complete() {
		return res
	}

	data := f.Fetch()
	if err := cache.Write(ctx, plan, data); err != nil {
		t.Fatal(err)
	}

	res, err = cache.Read(ctx, readID, plan)
	if err != nil {
		t.Fatal(err)
	}

	return res
}

// StaleRecorder collects invalidation notifications.
type StaleRecorder struct {
	ReadIDs []string
}

func (r *StaleRecorder) ReadInvalidated(readID string) {
	r.ReadIDs = append(r.ReadIDs, readID)
}
