// Package cache stores classifier predictions so identical text units are
// classified once.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a key from its parts. Parts are hashed, so keys never
// contain the (possibly sensitive) text they were built from.
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "pseudonym:v1:" + hex.EncodeToString(hash[:])
}
