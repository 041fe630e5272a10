package fingerprint

import (
	"encoding/hex"
	"fmt"
)

const (
	// KeySize for blake2b-512 digests
	KeySize = 64

	// KeySizeHex for the hex representation of a key
	KeySizeHex = 2 * KeySize
)

// Key identifies an entity by the digest of its canonical encoding.
//
// Two entities with identical semantic content always share a key,
// which is the basis for deduplication and for cheap equality checks
// between snapshots.
type Key [KeySize]byte

// NewKey creates a key from raw digest bytes
func NewKey(data []byte) (Key, error) {
	var k Key
	n := copy(k[:], data)
	if n != KeySize {
		return Key{}, &BadKeySize{Key: data}
	}
	return k, nil
}

// MustNewKey creates a key from raw digest bytes but panics if the size is wrong
func MustNewKey(data []byte) Key {
	k, e := NewKey(data)
	if e != nil {
		panic(e.Error())
	}
	return k
}

// ParseKey decodes a key from its hex representation
func ParseKey(s string) (Key, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, err
	}
	return NewKey(data)
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// IsZero tells whether the key is unset
func (k Key) IsZero() bool {
	return k == Key{}
}

// BadKeySize is an error returned when the key to create has an invalid size.
type BadKeySize struct {
	Key []byte
}

func (b *BadKeySize) Error() string {
	return fmt.Sprintf("%x has invalid size of %d, expected %d", b.Key, len(b.Key), KeySize)
}
