// Package cache stores serialized enumeration results.
//
// A [Cache] is a byte store with per-entry expiry. Backends:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for multi-instance servers
//   - [MongoCache]: durable cache with a TTL index
//   - [NullCache]: stores nothing (--no-cache, tests)
//
// Keys are produced by a [Keyer] so every caller derives the same key from
// the same inputs:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.EnumerationKey(cache.EnumerationKeyOpts{
//	    Generators: 2,
//	    Relations:  []group.Word{{0, 1, 0, 1, 0, 1}},
//	    Limit:      100,
//	})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/discrete/pkg/group"
)

// Cache is a key/value byte store with optional expiry.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored data and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// GetJSON looks up key and decodes a hit into v. Undecodable entries are
// deleted and reported as misses.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key. It returns the encoded size.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return len(data), c.Set(ctx, key, data, ttl)
}

// EnumerationKeyOpts holds every input that affects an enumeration result.
type EnumerationKeyOpts struct {
	Generators int               `json:"generators"`
	Relations  []group.Word      `json:"relations"`
	Subgroup   []group.Generator `json:"subgroup"`
	Limit      int               `json:"limit"`
}

// Keyer derives cache keys from enumeration inputs.
type Keyer interface {
	// EnumerationKey identifies a single coset table.
	EnumerationKey(opts EnumerationKeyOpts) string

	// QuotientKey identifies an element table, coset table and inverse map
	// computed together.
	QuotientKey(opts EnumerationKeyOpts) string
}

// DefaultKeyer hashes the JSON form of the options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// EnumerationKey returns "enum:<sha256>".
func (DefaultKeyer) EnumerationKey(opts EnumerationKeyOpts) string {
	return hashKey("enum", normalize(opts))
}

// QuotientKey returns "quotient:<sha256>".
func (DefaultKeyer) QuotientKey(opts EnumerationKeyOpts) string {
	return hashKey("quotient", normalize(opts))
}

// normalize maps nil and empty slices to the same encoding.
func normalize(opts EnumerationKeyOpts) EnumerationKeyOpts {
	if opts.Relations == nil {
		opts.Relations = []group.Word{}
	}
	if opts.Subgroup == nil {
		opts.Subgroup = []group.Generator{}
	}
	return opts
}

var _ Keyer = DefaultKeyer{}
