package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// Server deployments use it to keep per-user cutouts and composites in
// separate cache namespaces.
//
// Example usage:
//
//	// User-specific keys for private wardrobes
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Global keys for shared catalog images
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// CutoutKey generates a prefixed key for cutout caching.
func (k *ScopedKeyer) CutoutKey(imageHash string, opts CutoutKeyOpts) string {
	return k.prefix + k.inner.CutoutKey(imageHash, opts)
}

// CompositeKey generates a prefixed key for composite caching.
func (k *ScopedKeyer) CompositeKey(lookID, arrangementHash string, opts CompositeKeyOpts) string {
	return k.prefix + k.inner.CompositeKey(lookID, arrangementHash, opts)
}
