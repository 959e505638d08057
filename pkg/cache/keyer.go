package cache

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs always map to the same key.
type Keyer interface {
	// ArtifactKey identifies an encoded output of a composition.
	ArtifactKey(compositionHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the encoding settings that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Scale   float64 `json:"scale,omitempty"`
	Quality int     `json:"quality,omitempty"`
}

// DefaultKeyer produces "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes the composition hash together with the encoding
// settings.
func (DefaultKeyer) ArtifactKey(compositionHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", compositionHash, opts)
}

// ScopedKeyer prefixes every key, separating namespaces that share one
// backend (for example several servers on one Redis).
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with a prefix. A nil inner uses [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArtifactKey returns the prefixed key.
func (k *ScopedKeyer) ArtifactKey(compositionHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(compositionHash, opts)
}
