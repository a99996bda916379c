// Package determinism provides primitives for guaranteeing deterministic output.
// Results that are rendered or compared must use these instead of ranging over
// maps or generating random IDs.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Namespace roots every ID this module generates
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://archcost.dev/ids"))

// StableID is a name-based UUID: the same parts always give the same ID
type StableID string

// String returns the string representation
func (id StableID) String() string {
	return string(id)
}

// IDGenerator generates stable, deterministic IDs
type IDGenerator struct {
	namespace uuid.UUID
}

// NewIDGenerator creates an ID generator scoped to a kind of object
func NewIDGenerator(scope string) *IDGenerator {
	return &IDGenerator{namespace: uuid.NewSHA1(Namespace, []byte(scope))}
}

// Generate creates a version 5 UUID from the parts.
// Parts are joined with a NUL separator so ("ab","c") and ("a","bc") differ.
func (g *IDGenerator) Generate(parts ...string) StableID {
	return StableID(uuid.NewSHA1(g.namespace, []byte(strings.Join(parts, "\x00"))).String())
}

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the hex-encoded hash
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, enough to tell inputs apart in logs
func (h ContentHash) Short() string {
	return h.Hex()[:12]
}

// SortSlice sorts a slice in a stable, deterministic manner
func SortSlice[T any](slice []T, less func(a, b T) bool) {
	sort.SliceStable(slice, func(i, j int) bool {
		return less(slice[i], slice[j])
	})
}

// SortedKeys returns the keys of a map in sorted order
func SortedKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}

// RangeMapSorted iterates over a map in sorted key order
func RangeMapSorted[K comparable, V any](m map[K]V, fn func(K, V) bool) {
	for _, k := range SortedKeys(m) {
		if !fn(k, m[k]) {
			break
		}
	}
}
