package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The serve command uses it to keep API-submitted data apart from entries
// written by local CLI runs sharing the same backend.
//
// Example usage:
//
//	apiKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ValuesKey generates a prefixed key for aggregated totals.
func (k *ScopedKeyer) ValuesKey(recordsHash, key string) string {
	return k.prefix + k.inner.ValuesKey(recordsHash, key)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(valuesHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(valuesHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
