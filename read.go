package normcache

import (
	"context"
	"strconv"
)

// reader rehydrates one plan from the record store, resolving references
// to their target records and collecting the paths it could not serve.
// Every key whose stored value was consulted, present or absent, goes into
// the read's dependency set: an absent key still shaped the result, and a
// later write to it must invalidate this read.
type reader struct {
	cache  *Cache
	ctx    context.Context
	readID string
}

func (r *reader) readRoot(sels []Selection) (map[string]interface{}, []string) {
	chain := map[string]struct{}{RootKey: {}}
	return r.readObject(RootKey, sels, "", chain)
}

func (r *reader) readObject(key string, sels []Selection, path string, chain map[string]struct{}) (map[string]interface{}, []string) {
	r.access(key)

	record, ok := r.cache.store.read(r.ctx, key)
	if !ok {
		if path == "" {
			missing := make([]string, 0, len(sels))
			for _, sel := range sels {
				missing = append(missing, sel.Name)
			}
			return nil, missing
		}
		return nil, []string{path}
	}

	data := make(map[string]interface{}, len(sels))
	var missing []string
	for _, sel := range sels {
		fieldPath := joinPath(path, sel.Name)
		v, ok := record[sel.Name]
		if !ok {
			missing = append(missing, fieldPath)
			continue
		}
		resolved, miss := r.resolve(key, v, sel, fieldPath, chain)
		missing = append(missing, miss...)
		if resolved == nil && len(miss) != 0 {
			continue
		}
		data[sel.Name] = resolved
	}

	return data, missing
}

func (r *reader) resolve(ownerKey string, v Value, sel Selection, path string, chain map[string]struct{}) (interface{}, []string) {
	switch v.Kind {
	case ScalarKind:
		if len(sel.Selections) != 0 {
			// a stored null satisfies an object-shaped selection: the write
			// recorded that the field has no object, and that answer serves
			// reads without a refetch
			if v.Scalar == nil {
				return nil, nil
			}
			r.cache.diagf(r.ctx, "read: field %s of %s holds a scalar but the plan expects an object", path, ownerKey)
			return nil, []string{path}
		}
		return v.Scalar, nil

	case ListKind:
		list := make([]interface{}, 0, len(v.List))
		var missing []string
		for idx, el := range v.List {
			resolved, miss := r.resolve(ownerKey, el, sel, path+"."+strconv.Itoa(idx), chain)
			missing = append(missing, miss...)
			list = append(list, resolved)
		}
		return list, missing

	case ReferenceKind:
		if len(sel.Selections) == 0 {
			r.cache.diagf(r.ctx, "read: field %s of %s holds a reference but the plan expects a scalar", path, ownerKey)
			return nil, []string{path}
		}
		if _, ok := chain[v.Ref.Key]; ok {
			// reference cycle in stored data; plans are finite so this only
			// happens when the store itself loops
			r.cache.diagf(r.ctx, "read: reference cycle through %s at %s", v.Ref.Key, path)
			return nil, []string{path}
		}
		chain[v.Ref.Key] = struct{}{}
		obj, missing := r.readObject(v.Ref.Key, sel.Selections, path, chain)
		delete(chain, v.Ref.Key)

		if obj == nil && len(missing) != 0 {
			derr := &DanglingReferenceError{From: ownerKey, To: v.Ref.Key, Path: path}
			r.cache.diagf(r.ctx, "read: %s", derr.Error())
		}
		return obj, missing
	}

	r.cache.diagf(r.ctx, "read: unknown value kind %d at %s", v.Kind, path)
	return nil, []string{path}
}

func (r *reader) access(key string) {
	if r.readID == "" {
		return
	}
	r.cache.tracker.recordAccess(r.readID, key)
}
