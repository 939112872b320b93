// Package cache stores query results keyed by the content hash of the rule
// input, so that re-running a query over an unchanged file skips parsing and
// graph construction.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, with optional
//     expiry. Used by the CLI (~/.cache/bagrules).
//   - [NullCache]: never stores anything. Used with --no-cache and in tests.
//
// # Keys
//
// Keys are produced by a [Keyer]. [DefaultKeyer] hashes the query options so
// that any change to the query, target or parse options yields a new key.
// [ScopedKeyer] prefixes every key, which the CLI uses to keep results of
// different builds apart.
package cache

import (
	"context"
	"time"
)

// TTLResult is the default lifetime of a cached query result.
const TTLResult = 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored data and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ResultKeyOpts are the query parameters that distinguish cached results.
type ResultKeyOpts struct {
	Query  string `json:"query"`
	Target string `json:"target"`
	List   bool   `json:"list,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// ResultKey returns the key of a query result over the input with the
	// given content hash.
	ResultKey(inputHash string, opts ResultKeyOpts) string
}

// DefaultKeyer produces "result:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey hashes the input hash together with the query options.
func (DefaultKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("result", inputHash, opts)
}
