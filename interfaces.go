package normcache

import (
	"context"
)

// Storage is the synchronous key-value backend the cache persists records
// to. Keys and values are strings; the Codec is responsible for anything
// binary before it crosses this boundary.
//
// Get returns ErrValueMissing when the key is absent. Keys enumerates every
// key the backend currently holds, for snapshot and maintenance tooling
// that works against the backend directly; the cache itself never calls it.
//
// The cache itself is single-threaded and issues at most one storage call
// at a time. A backend shared with other goroutines must serialize its own
// access.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
}

// Codec converts a normalized record to and from the string representation
// required by Storage. Decode must round-trip whatever Encode produced and
// must fail with *CorruptRecordError (carrying key) on malformed input.
type Codec interface {
	Encode(record Record) (string, error)
	Decode(key, value string) (Record, error)
}

// IdentityFn computes the stable identity of a decomposed object, or ""
// when the object has none. Objects without a stable identity get a
// generated key scoped to their parent path.
//
// The function must be pure: identical input always yields the identical
// key, that is what makes records shareable across queries.
type IdentityFn func(obj map[string]interface{}) string

// StaleHandler is the subscription point for the query layer. It is called
// once per invalidated readID, synchronously, after the write that
// invalidated it has been persisted.
type StaleHandler interface {
	ReadInvalidated(readID string)
}

// Snapshot is the full exported state of the cache, one serialized record
// per entity key. It is the unit of Restore and Extract.
type Snapshot map[string]string
