package readcache

import (
	"encoding/hex"
	"encoding/json"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// CacheKey derives a deterministic cache key from a logical operation
// name and its arguments. Positional arguments are serialized in call
// order; named arguments are sorted by name first, so declaration order
// never changes the key. The operation name prefixes the digest, giving
// each operation its own namespace.
func CacheKey(op string, args []interface{}, named map[string]interface{}) string {
	h, _ := blake2b.New256(nil)

	h.Write([]byte(op))
	h.Write([]byte{0})

	for _, arg := range args {
		data, _ := json.Marshal(arg)
		h.Write(data)
		h.Write([]byte{0})
	}

	if len(named) > 0 {
		names := make([]string, 0, len(named))
		for name := range named {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			h.Write([]byte(name))
			h.Write([]byte{'='})
			data, _ := json.Marshal(named[name])
			h.Write(data)
			h.Write([]byte{0})
		}
	}

	return op + ":" + hex.EncodeToString(h.Sum(nil))
}
