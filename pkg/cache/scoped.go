package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis or Mongo backend without colliding.
//
// Example usage:
//
//	// Keys for the staging server
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// EnumerationKey generates a prefixed key for a coset table.
func (k *ScopedKeyer) EnumerationKey(opts EnumerationKeyOpts) string {
	return k.prefix + k.inner.EnumerationKey(opts)
}

// QuotientKey generates a prefixed key for a quotient.
func (k *ScopedKeyer) QuotientKey(opts EnumerationKeyOpts) string {
	return k.prefix + k.inner.QuotientKey(opts)
}
