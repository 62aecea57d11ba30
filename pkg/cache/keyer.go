package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ArtifactKeyOpts are the render parameters not already captured by the
// DOT source.
type ArtifactKeyOpts struct {
	Engine string `json:"engine"`
	Format string `json:"format"`
}

// Keyer generates cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact for a DOT hash.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultKeyer produces unprefixed keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	// Marshal of a string and a flat struct cannot fail.
	data, _ := json.Marshal([]any{dotHash, opts})
	return "artifact:" + Hash(data)
}

// ScopedKeyer prepends a namespace to every key so that several
// installations can share one redis database.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "cybergraph:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(dotHash, opts)
}
