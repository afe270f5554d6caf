package aggregate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// KeyPrefix namespaces composite search entries in the response cache. The
// listing event consumer purges this prefix on mutations.
const KeyPrefix = "listings_with_images:"

// Fingerprint derives a deterministic digest of a filter map. Keys are
// sorted before serialization so the same parameters hash identically no
// matter how the client ordered them.
func Fingerprint(filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, filters[k]})
	}

	canonical, _ := json.Marshal(pairs)
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// CacheKey is the full cache key for a filter map.
func CacheKey(filters map[string]string) string {
	return KeyPrefix + Fingerprint(filters)
}
