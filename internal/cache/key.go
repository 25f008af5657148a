package cache

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// GenerateKey builds "prefix?k1=v1&k2=v2" with parameters sorted by name, so
// the same parameter set always yields the same key.
func GenerateKey(prefix string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s=%v", name, params[name]))
	}
	return prefix + "?" + strings.Join(pairs, "&")
}

// Fingerprint returns a short stable digest of a credential, safe to embed in
// cache keys and logs.
func Fingerprint(secret string) string {
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:8])
}
