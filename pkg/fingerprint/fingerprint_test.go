package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entity struct {
	Name       string                 `json:"name"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	LocalPath  string                 `json:"-"`
}

func TestMaker_Deterministic(t *testing.T) {
	m := New()

	e1 := entity{Name: "sample", Attributes: map[string]interface{}{"a": 1, "b": "x"}}
	e2 := entity{Name: "sample", Attributes: map[string]interface{}{"b": "x", "a": 1}}

	k1, err := m.Entity(e1)
	require.NoError(t, err)
	k2, err := m.Entity(e2)
	require.NoError(t, err)

	// map iteration order must not leak into the digest
	assert.Equal(t, k1, k2)

	e3 := e1
	e3.Name = "other"
	k3, err := m.Entity(e3)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}

func TestMaker_IgnoresEphemeralFields(t *testing.T) {
	m := New()

	e1 := entity{Name: "sample"}
	e2 := entity{Name: "sample", LocalPath: "/tmp/cache/0001.bin"}

	k1, err := m.Entity(e1)
	require.NoError(t, err)
	k2, err := m.Entity(e2)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestMaker_Prefix(t *testing.T) {
	plain := New()
	prefixed := New(Prefix("segment:"))

	assert.NotEqual(t, plain.Bytes([]byte("abc")), prefixed.Bytes([]byte("abc")))
}

func TestCanonicalBytes_Stable(t *testing.T) {
	e := entity{Name: "sample", Attributes: map[string]interface{}{"z": 1, "a": 2}}

	b1, err := CanonicalBytes(e)
	require.NoError(t, err)
	b2, err := CanonicalBytes(e)
	require.NoError(t, err)

	// re-serializing an unchanged entity reproduces byte-identical output
	assert.Equal(t, b1, b2)
}
