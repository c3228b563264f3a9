// Package cache stores converted WIF output keyed by a hash of its source.
//
// Conversion is deterministic: the same source bytes, format, title and
// codec version always yield the same WIF text. Batch runs over large draft
// libraries and the HTTP service use this to skip re-encoding unchanged
// files.
//
// Three backends implement [Cache]:
//   - [FileCache] for the CLI, one JSON entry per key under a directory
//   - [RedisCache] for shared deployments of the HTTP service
//   - [NullCache] when caching is disabled
package cache

import (
	"context"
	"time"
)

// TTLConversion is how long converted output is kept.
const TTLConversion = 30 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. hit is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
