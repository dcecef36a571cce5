package normcache

import (
	"context"
	"errors"
	"sync"
)

// Cache composes the record store, identity resolver, codec and dependency
// tracker behind the public read/write surface. The semantics are
// single-threaded and synchronous; the mutex only protects the maps when a
// caller strays across goroutines, it provides no additional ordering.
type Cache struct {
	m       sync.Mutex
	store   *recordStore
	tracker *tracker

	identityFn IdentityFn
	codec      Codec
	logf       func(ctx context.Context, format string, args ...interface{})
	diagf      func(ctx context.Context, format string, args ...interface{})

	staleHandlers []StaleHandler
	stale         map[string]struct{}
}

// New builds a Cache over the given storage. The storage is mandatory:
// the cache has no meaningful default persistence target, so a nil storage
// fails with *ConfigurationError.
func New(storage Storage, opts ...Option) (*Cache, error) {
	if storage == nil {
		return nil, &ConfigurationError{Reason: "must provide a storage"}
	}

	c := &Cache{
		tracker: newTracker(),
		stale:   make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt.Apply(c)
	}

	if c.identityFn == nil {
		c.identityFn = DefaultIdentityFn
	}
	if c.codec == nil {
		c.codec = DefaultCodec
	}
	if c.logf == nil {
		c.logf = func(ctx context.Context, format string, args ...interface{}) {}
	}
	if c.diagf == nil {
		c.diagf = func(ctx context.Context, format string, args ...interface{}) {}
	}

	c.store = &recordStore{
		storage: storage,
		codec:   c.codec,
		records: make(map[string]Record),
		logf:    c.logf,
		diagf:   c.diagf,
	}

	return c, nil
}

// Read serves the plan from the cache. A non-empty readID opens a fresh
// dependency set for the read, superseding any previous read with the same
// ID; readID "" performs an untracked read. Missing data is reported on
// the Result, never as an error.
func (c *Cache) Read(ctx context.Context, readID string, plan *Plan) (*Result, error) {
	if plan == nil {
		return nil, errors.New("normcache: nil plan")
	}

	c.m.Lock()
	defer c.m.Unlock()

	if readID != "" {
		c.tracker.beginRead(readID)
		delete(c.stale, readID)
	}

	r := &reader{cache: c, ctx: ctx, readID: readID}
	data, missing := r.readRoot(plan.Selections)

	c.logf(ctx, "cache.Read: readID=%s len(missing)=%d", readID, len(missing))

	return &Result{Data: data, Missing: missing}, nil
}

// Write decomposes data according to plan, persists every touched record
// and invalidates the reads that depend on them. Stale handlers run after
// the write is fully applied.
func (c *Cache) Write(ctx context.Context, plan *Plan, data map[string]interface{}) error {
	if plan == nil {
		return errors.New("normcache: nil plan")
	}

	c.m.Lock()
	// don't use defer Unlock(). handlers must run outside the lock.

	n := newNormalizer(ctx, c)
	if err := n.writeObject(RootKey, plan.Selections, data); err != nil {
		c.m.Unlock()
		return err
	}

	c.logf(ctx, "cache.Write: len(touched)=%d", len(n.touched))

	readIDs, handlers := c.collectStale(n.touched)
	c.m.Unlock()

	notifyStale(readIDs, handlers)

	return nil
}

// Restore bulk-loads a snapshot as the authoritative state, replacing both
// memory and storage. No invalidation is triggered. Corrupt entries are
// skipped and reported as a MultiError of *CorruptRecordError; every other
// entry still loads.
func (c *Cache) Restore(ctx context.Context, snapshot Snapshot) error {
	c.m.Lock()
	defer c.m.Unlock()

	return c.store.restore(ctx, snapshot)
}

// Extract exports the current in-memory state as a snapshot, independent
// of whether each record already reached the storage backend.
func (c *Cache) Extract(ctx context.Context) (Snapshot, error) {
	c.m.Lock()
	defer c.m.Unlock()

	return c.store.extract(ctx)
}

// Evict removes one record from memory and storage and invalidates the
// reads that depend on it.
func (c *Cache) Evict(ctx context.Context, key string) error {
	c.m.Lock()

	if err := c.store.remove(ctx, key); err != nil {
		c.m.Unlock()
		return err
	}

	c.logf(ctx, "cache.Evict: key=%s", key)

	readIDs, handlers := c.collectStale([]string{key})
	c.m.Unlock()

	notifyStale(readIDs, handlers)

	return nil
}

// ClearAll empties memory and storage and invalidates and releases every
// active read.
func (c *Cache) ClearAll(ctx context.Context) error {
	c.m.Lock()

	if err := c.store.clear(ctx); err != nil {
		c.m.Unlock()
		return err
	}

	readIDs := c.tracker.active()
	for _, readID := range readIDs {
		c.tracker.release(readID)
		c.stale[readID] = struct{}{}
	}
	handlers := make([]StaleHandler, len(c.staleHandlers))
	copy(handlers, c.staleHandlers)

	c.logf(ctx, "cache.ClearAll: len(readIDs)=%d", len(readIDs))

	c.m.Unlock()

	notifyStale(readIDs, handlers)

	return nil
}

// Release discards the dependency set of readID. A released read's
// eventual completion does not resurrect its set.
func (c *Cache) Release(readID string) {
	c.m.Lock()
	defer c.m.Unlock()

	c.tracker.release(readID)
	delete(c.stale, readID)
}

// Stale reports whether readID was invalidated since it was last read.
func (c *Cache) Stale(readID string) bool {
	c.m.Lock()
	defer c.m.Unlock()

	_, ok := c.stale[readID]
	return ok
}

// AppendStaleHandler registers a handler for invalidation events.
// NOTE First-In First-Notified
func (c *Cache) AppendStaleHandler(h StaleHandler) {
	c.m.Lock()
	defer c.m.Unlock()

	c.staleHandlers = append(c.staleHandlers, h)
}

// RemoveStaleHandler removes a previously appended handler. It reports
// whether the handler was found.
func (c *Cache) RemoveStaleHandler(h StaleHandler) bool {
	c.m.Lock()
	defer c.m.Unlock()

	for idx, handler := range c.staleHandlers {
		if handler == h {
			c.staleHandlers = append(c.staleHandlers[:idx], c.staleHandlers[idx+1:]...)
			return true
		}
	}

	return false
}

// collectStale marks every read depending on one of keys as stale and
// returns the readIDs to notify together with the handler list. Caller
// must hold the mutex.
func (c *Cache) collectStale(keys []string) ([]string, []StaleHandler) {
	var readIDs []string
	seen := make(map[string]struct{})
	for _, key := range keys {
		for _, readID := range c.tracker.onWrite(key) {
			if _, ok := seen[readID]; ok {
				continue
			}
			seen[readID] = struct{}{}
			c.stale[readID] = struct{}{}
			readIDs = append(readIDs, readID)
		}
	}

	handlers := make([]StaleHandler, len(c.staleHandlers))
	copy(handlers, c.staleHandlers)

	return readIDs, handlers
}

func notifyStale(readIDs []string, handlers []StaleHandler) {
	for _, readID := range readIDs {
		for _, h := range handlers {
			h.ReadInvalidated(readID)
		}
	}
}
