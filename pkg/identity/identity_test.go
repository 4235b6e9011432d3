package identity_test

import (
	"crypto/sha512"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casgraph/casgraph/pkg/identity"
)

func TestHashBytes_Deterministic(t *testing.T) {
	data := []byte("same content")

	first := identity.HashBytes(data)
	second := identity.HashBytes(data)

	assert.Equal(t, first, second)
	assert.Equal(t, identity.Hash(sha512.Sum512(data)), first)
}

func TestHashFields_FieldBoundaries(t *testing.T) {
	// length prefixes keep field boundaries unambiguous
	a := identity.HashFields([]byte("ab"), []byte("c"))
	b := identity.HashFields([]byte("a"), []byte("bc"))

	assert.NotEqual(t, a, b)
}

func TestHashFields_SensitiveToEveryField(t *testing.T) {
	base := identity.HashFields([]byte("x"), []byte("y"), []byte("z"))

	assert.NotEqual(t, base, identity.HashFields([]byte("q"), []byte("y"), []byte("z")))
	assert.NotEqual(t, base, identity.HashFields([]byte("x"), []byte("q"), []byte("z")))
	assert.NotEqual(t, base, identity.HashFields([]byte("x"), []byte("y"), []byte("q")))
	assert.NotEqual(t, base, identity.HashFields([]byte("x"), []byte("y")))
}

func TestHashHexadecimal_RoundTrip(t *testing.T) {
	h := identity.HashString("round trip")

	parsed, err := identity.HashHexadecimal(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestHashHexadecimal_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too short", "abcd"},
		{"bad characters", string(make([]byte, identity.Size*2))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := identity.HashHexadecimal(tc.input)
			assert.Error(t, err)
		})
	}
}

func TestHash_Compare(t *testing.T) {
	var lo, hi identity.Hash
	hi[0] = 1

	assert.Equal(t, -1, lo.Compare(hi))
	assert.Equal(t, 1, hi.Compare(lo))
	assert.Equal(t, 0, lo.Compare(lo))
	assert.True(t, lo.Less(hi))
	assert.False(t, hi.Less(lo))
}

func TestHash_IsZero(t *testing.T) {
	var zero identity.Hash
	assert.True(t, zero.IsZero())
	assert.False(t, identity.HashString("x").IsZero())
}

func TestCheckLabel(t *testing.T) {
	assert.NoError(t, identity.CheckLabel(nil))
	assert.NoError(t, identity.CheckLabel(make([]byte, identity.MaxLabelLen)))

	err := identity.CheckLabel(make([]byte, identity.MaxLabelLen+1))
	require.Error(t, err)
	var encErr *identity.EncodingError
	assert.ErrorAs(t, err, &encErr)
}

func TestCache_TransparentToResults(t *testing.T) {
	cache, err := identity.NewCache(1 << 20)
	require.NoError(t, err)
	defer cache.Close()

	data := []byte("cached content")
	want := identity.HashBytes(data)

	// repeated lookups must match the uncached digest whether or not
	// the entry was admitted
	for i := 0; i < 10; i++ {
		assert.Equal(t, want, cache.HashBytes(data))
	}
}
