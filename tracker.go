package normcache

import (
	"sort"
)

// tracker records, per read, the set of entity keys the read consulted.
// Invalidation is exact-match on entity key: writing one field of a record
// invalidates exactly the reads that touched that record.
type tracker struct {
	deps map[string]map[string]struct{}
}

func newTracker() *tracker {
	return &tracker{
		deps: make(map[string]map[string]struct{}),
	}
}

// beginRead opens a fresh, empty dependency set for readID. A previous set
// for the same readID is superseded.
func (t *tracker) beginRead(readID string) {
	t.deps[readID] = make(map[string]struct{})
}

// recordAccess adds key to readID's dependency set. Idempotent; a no-op
// when the read was already released, so a released read's late accesses
// never resurrect its set.
func (t *tracker) recordAccess(readID, key string) {
	set, ok := t.deps[readID]
	if !ok {
		return
	}
	set[key] = struct{}{}
}

// onWrite returns the readIDs whose dependency set contains key, sorted
// for deterministic notification order.
func (t *tracker) onWrite(key string) []string {
	var readIDs []string
	for readID, set := range t.deps {
		if _, ok := set[key]; ok {
			readIDs = append(readIDs, readID)
		}
	}
	sort.Strings(readIDs)

	return readIDs
}

// release discards readID's dependency set.
func (t *tracker) release(readID string) {
	delete(t.deps, readID)
}

// active returns every readID with a live dependency set, sorted.
func (t *tracker) active() []string {
	readIDs := make([]string, 0, len(t.deps))
	for readID := range t.deps {
		readIDs = append(readIDs, readID)
	}
	sort.Strings(readIDs)

	return readIDs
}
