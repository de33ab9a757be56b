package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each workspace of a shared
// Redis its own namespace.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "team:platform:")
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

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(source string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(source, opts)
}

// SceneKey generates a prefixed scene key.
func (k *ScopedKeyer) SceneKey(snapshotHash string, opts SceneKeyOpts) string {
	return k.prefix + k.inner.SceneKey(snapshotHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}
