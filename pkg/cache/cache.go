// Package cache stores encoded artifacts so that repeated runs with a fixed
// seed skip generation entirely.
//
// A composition is fully determined by its canvas, depth, palette, split
// ratios and seed, so the encoded bytes for a given format can be reused.
// Runs with a random seed are never cached.
//
// Three backends share the [Cache] interface:
//
//   - [NullCache] stores nothing (caching disabled)
//   - [FileCache] keeps entries under a directory, used by the CLI
//   - [RedisCache] keeps entries in Redis, used by the HTTP server
//
// Cache errors are never fatal: callers log them and regenerate.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLArtifact applies to encoded images and layouts.
const TTLArtifact = 7 * 24 * time.Hour
