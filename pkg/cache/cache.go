// Package cache provides caching for fetched item images, background-removal
// cutouts, and rendered composites.
//
// Three backends are available:
//   - FileCache: persistent cache under a directory, used by the CLI
//   - RedisCache: shared cache for server deployments
//   - NullCache: no-op cache for tests or when caching is disabled
//
// Keys are generated through the Keyer interface so that callers never
// concatenate key strings by hand.
package cache

import (
	"context"
	"time"
)

// Default TTLs per content class. Fetched images and cutouts are
// content-addressed so they can live long; composites are keyed by look and
// go stale as soon as the arrangement changes.
const (
	TTLImage     = 24 * time.Hour
	TTLCutout    = 7 * 24 * time.Hour
	TTLComposite = time.Hour
)

// Cache is the storage interface shared by all backends.
// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss;
// errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// CutoutKeyOpts captures the parameters that affect a background-removal
// result. Different removers (or tolerances) must never share a key.
type CutoutKeyOpts struct {
	Remover   string
	Tolerance float64
}

// CompositeKeyOpts captures the parameters that affect a rendered composite.
type CompositeKeyOpts struct {
	Width  int
	Height int
}

// Keyer generates cache keys for the three content classes.
type Keyer interface {
	// HTTPKey generates a key for a fetched image body.
	// namespace identifies the source host class (e.g. "drive:", "dropbox:").
	HTTPKey(namespace, key string) string

	// CutoutKey generates a key for a background-removed image.
	// imageHash is the SHA-256 of the source image bytes.
	CutoutKey(imageHash string, opts CutoutKeyOpts) string

	// CompositeKey generates a key for a rendered look composite.
	// arrangementHash covers the placements that went into the render.
	CompositeKey(lookID, arrangementHash string, opts CompositeKeyOpts) string
}

// DefaultKeyer implements Keyer with deterministic, hash-based keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
// Format: http:namespace:key
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// CutoutKey generates a key for cutout caching.
// Format: cutout:hash(imageHash, opts)
func (k *DefaultKeyer) CutoutKey(imageHash string, opts CutoutKeyOpts) string {
	return hashKey("cutout", imageHash, opts)
}

// CompositeKey generates a key for composite caching.
// Format: composite:hash(lookID, arrangementHash, opts)
func (k *DefaultKeyer) CompositeKey(lookID, arrangementHash string, opts CompositeKeyOpts) string {
	return hashKey("composite", lookID, arrangementHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
