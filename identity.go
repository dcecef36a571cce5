package normcache

import (
	"strconv"
)

// DefaultIdentityFn keys an object by (__typename, id), falling back to
// (__typename, _id). Objects missing either part have no stable identity
// and get a generated key.
func DefaultIdentityFn(obj map[string]interface{}) string {
	typename, ok := obj["__typename"].(string)
	if !ok || typename == "" {
		return ""
	}

	for _, name := range []string{"id", "_id"} {
		raw, ok := obj[name]
		if !ok {
			continue
		}
		switch id := raw.(type) {
		case string:
			if id != "" {
				return StableKey(typename, id)
			}
		case float64:
			// numbers arrive as float64 once the transport layer has been
			// through encoding/json
			return StableKey(typename, strconv.FormatFloat(id, 'f', -1, 64))
		case int:
			return StableKey(typename, strconv.Itoa(id))
		case int64:
			return StableKey(typename, strconv.FormatInt(id, 10))
		}
	}

	return ""
}
