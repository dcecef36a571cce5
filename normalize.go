package normcache

import (
	"context"
	"fmt"
	"strconv"
)

// normalizer decomposes one write's data into flat records. Nested objects
// are replaced by references, recursively; recursion terminates because an
// object always becomes a reference, never an inline structure.
type normalizer struct {
	cache *Cache
	ctx   context.Context

	touched    []string
	touchedSet map[string]struct{}
}

func newNormalizer(ctx context.Context, cache *Cache) *normalizer {
	return &normalizer{
		cache:      cache,
		ctx:        ctx,
		touchedSet: make(map[string]struct{}),
	}
}

// writeObject merges the selected fields of obj into the record at key.
func (n *normalizer) writeObject(key string, sels []Selection, obj map[string]interface{}) error {
	fields := make(Record, len(sels))
	for _, sel := range sels {
		raw, ok := obj[sel.Name]
		if !ok {
			return fmt.Errorf("normcache: write data for %q is missing field %q", key, sel.Name)
		}
		v, err := n.writeValue(key, sel, sel.Name, raw)
		if err != nil {
			return err
		}
		fields[sel.Name] = v
	}

	changed, err := n.cache.store.write(n.ctx, key, fields)
	if err != nil {
		return err
	}
	if changed {
		n.touch(key)
	}

	return nil
}

func (n *normalizer) writeValue(parentKey string, sel Selection, fieldPath string, raw interface{}) (Value, error) {
	if raw == nil {
		return ScalarValue(nil), nil
	}

	switch t := raw.(type) {
	case map[string]interface{}:
		if len(sel.Selections) == 0 {
			return Value{}, fmt.Errorf("normcache: field %q of %q holds an object but the plan expects a scalar", fieldPath, parentKey)
		}
		return n.writeChild(parentKey, sel, fieldPath, t)
	case []interface{}:
		list := make([]Value, 0, len(t))
		for idx, el := range t {
			v, err := n.writeValue(parentKey, sel, fieldPath+"."+strconv.Itoa(idx), el)
			if err != nil {
				return Value{}, err
			}
			list = append(list, v)
		}
		return Value{Kind: ListKind, List: list}, nil
	default:
		return ScalarValue(canonicalScalar(raw)), nil
	}
}

// canonicalScalar maps numbers to float64, the representation every scalar
// takes after a codec round-trip. Stored records then compare equal to
// their rehydrated form, so an identical re-write after a restart stays a
// no-op.
func canonicalScalar(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}

// writeChild normalizes a nested object into its own record and returns
// the reference that replaces it in the parent.
func (n *normalizer) writeChild(parentKey string, sel Selection, fieldPath string, obj map[string]interface{}) (Value, error) {
	typename, _ := obj["__typename"].(string)

	key := n.cache.identityFn(obj)
	generated := false
	if key == "" {
		key = GeneratedKey(parentKey, fieldPath)
		generated = true
	}

	if err := n.writeObject(key, sel.Selections, obj); err != nil {
		return Value{}, err
	}

	return RefValue(Reference{
		Key:       key,
		Generated: generated,
		Typename:  typename,
	}), nil
}

func (n *normalizer) touch(key string) {
	if _, ok := n.touchedSet[key]; ok {
		return
	}
	n.touchedSet[key] = struct{}{}
	n.touched = append(n.touched, key)
}
