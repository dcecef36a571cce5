package normcache

import (
	"strings"
)

// RootKey is the reserved entity key of the root record holding top-level
// results. It is fixed and known to both Restore and Extract.
const RootKey = "ROOT_QUERY"

// generatedPrefix keeps the generated key space disjoint from stable keys.
// A stable key always starts with a non-empty typename, never with "$".
const generatedPrefix = "$"

// StableKey builds the entity key of an object with a stable identity.
func StableKey(typename, id string) string {
	return typename + ":" + id
}

// GeneratedKey builds a synthetic entity key for an object without a
// stable identity, scoped to its parent record and field path. Nesting
// under an already generated parent extends the path instead of stacking
// markers, so `$ROOT_QUERY.outer` begets `$ROOT_QUERY.outer.inner`.
func GeneratedKey(parentKey, fieldPath string) string {
	if strings.HasPrefix(parentKey, generatedPrefix) {
		return parentKey + "." + fieldPath
	}
	return generatedPrefix + parentKey + "." + fieldPath
}

// IsGeneratedKey reports whether key belongs to the generated key space.
func IsGeneratedKey(key string) bool {
	return strings.HasPrefix(key, generatedPrefix)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
