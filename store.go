package normcache

import (
	"context"
	"errors"
	"reflect"
	"sort"
)

// recordStore is the central map from entity key to normalized record.
// Every mutation is mirrored to the Storage adapter through the Codec in
// the same synchronous step, so the in-memory record always equals the
// decoded storage entry outside an in-flight write.
type recordStore struct {
	storage Storage
	codec   Codec
	records map[string]Record

	logf  func(ctx context.Context, format string, args ...interface{})
	diagf func(ctx context.Context, format string, args ...interface{})
}

// write merges fields into the record at key, creating it if absent, and
// persists the merged record. The existing record is pulled through the
// read path first so a merge never clobbers fields that only live in
// storage. Memory is only updated once the storage write succeeded,
// encode-then-set-then-commit, so a failed persist does not leave memory
// ahead of storage.
//
// The returned flag reports whether the record actually changed; an
// identical re-write is a no-op and triggers no invalidation.
func (rs *recordStore) write(ctx context.Context, key string, fields Record) (bool, error) {
	existing, ok := rs.read(ctx, key)

	changed := !ok
	if ok {
		for name, v := range fields {
			old, ok := existing[name]
			if !ok || !reflect.DeepEqual(old, v) {
				changed = true
				break
			}
		}
	}
	if !changed {
		return false, nil
	}

	var merged Record
	if ok {
		merged = existing.Clone()
	} else {
		merged = make(Record, len(fields))
	}
	merged.Merge(fields)

	value, err := rs.codec.Encode(merged)
	if err != nil {
		return false, err
	}
	if err := rs.storage.Set(ctx, key, value); err != nil {
		return false, err
	}
	rs.records[key] = merged

	rs.logf(ctx, "store.write: key=%s len(fields)=%d", key, len(fields))

	return true, nil
}

// read returns the record at key, pulling it from storage on a memory
// miss. Corrupt storage entries and storage faults degrade to a miss for
// this key only; the error is surfaced through the diagnostic log.
func (rs *recordStore) read(ctx context.Context, key string) (Record, bool) {
	if record, ok := rs.records[key]; ok {
		return record, true
	}

	value, err := rs.storage.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrValueMissing) {
			rs.diagf(ctx, "store.read: storage get failed key=%s err=%s", key, err.Error())
		}
		return nil, false
	}

	record, err := rs.codec.Decode(key, value)
	if err != nil {
		rs.diagf(ctx, "store.read: %s", err.Error())
		return nil, false
	}
	rs.records[key] = record

	return record, true
}

func (rs *recordStore) remove(ctx context.Context, key string) error {
	if err := rs.storage.Remove(ctx, key); err != nil {
		return err
	}
	delete(rs.records, key)

	return nil
}

// restore replaces the whole store state with the snapshot. Entries that
// fail to decode are skipped and collected; everything else loads. No
// dependency invalidation happens here, the snapshot is the authoritative
// starting state.
func (rs *recordStore) restore(ctx context.Context, snapshot Snapshot) error {
	if err := rs.storage.Clear(ctx); err != nil {
		return err
	}
	rs.records = make(map[string]Record, len(snapshot))

	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs MultiError
	for _, key := range keys {
		value := snapshot[key]
		record, err := rs.codec.Decode(key, value)
		if err != nil {
			rs.diagf(ctx, "store.restore: %s", err.Error())
			errs = append(errs, err)
			continue
		}
		if err := rs.storage.Set(ctx, key, value); err != nil {
			return err
		}
		rs.records[key] = record
	}

	rs.logf(ctx, "store.restore: len(snapshot)=%d len(errs)=%d", len(snapshot), len(errs))

	if len(errs) != 0 {
		return errs
	}
	return nil
}

// extract serializes the current in-memory state, independent of the
// storage backend. Empty records are skipped so that restore and extract
// round-trip.
func (rs *recordStore) extract(ctx context.Context) (Snapshot, error) {
	snapshot := make(Snapshot, len(rs.records))
	for key, record := range rs.records {
		if len(record) == 0 {
			continue
		}
		value, err := rs.codec.Encode(record)
		if err != nil {
			return nil, err
		}
		snapshot[key] = value
	}

	rs.logf(ctx, "store.extract: len(snapshot)=%d", len(snapshot))

	return snapshot, nil
}

func (rs *recordStore) clear(ctx context.Context) error {
	if err := rs.storage.Clear(ctx); err != nil {
		return err
	}
	rs.records = make(map[string]Record)

	return nil
}
