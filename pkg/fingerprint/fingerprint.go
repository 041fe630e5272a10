// Package fingerprint computes stable content identifiers for dataset
// metadata entities.
//
// Identifiers are blake2b-512 digests over a canonical JSON encoding
// (sorted object keys, no insignificant whitespace), so they are stable
// across process restarts and across SDK implementations: the hash is
// defined over bytes on the wire, never over in-memory layout.
package fingerprint

import (
	blake2b "github.com/minio/blake2b-simd"

	jsoniter "github.com/json-iterator/go"
)

// canonical is the one true encoding fingerprints are computed over.
// SortMapKeys keeps map-valued fields (label attributes) deterministic.
var canonical = jsoniter.Config{
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Option is a functor to build a Maker with some options
type Option func(*Maker)

// Prefix adds a domain-separation prefix mixed into every digest
func Prefix(p string) Option {
	return func(m *Maker) {
		m.prefix = []byte(p)
	}
}

// New builds a fingerprint Maker
func New(opts ...Option) *Maker {
	m := &Maker{}
	for _, apply := range opts {
		apply(m)
	}
	return m
}

// Maker computes fingerprint keys
type Maker struct {
	prefix []byte
}

// Bytes fingerprints a raw byte payload
func (m *Maker) Bytes(data []byte) Key {
	h := blake2b.New512()
	if len(m.prefix) > 0 {
		_, _ = h.Write(m.prefix)
	}
	_, _ = h.Write(data)
	return MustNewKey(h.Sum(nil))
}

// Entity fingerprints any entity through its canonical JSON encoding.
// Fields tagged `json:"-"` (ephemeral state such as local cache paths)
// never reach the digest.
func (m *Maker) Entity(v interface{}) (Key, error) {
	data, err := canonical.Marshal(v)
	if err != nil {
		return Key{}, err
	}
	return m.Bytes(data), nil
}

// CanonicalBytes exposes the canonical encoding itself, for stores that
// must reproduce byte-identical output for unchanged entities.
func CanonicalBytes(v interface{}) ([]byte, error) {
	return canonical.Marshal(v)
}
