// Package identity provides content-derived identifiers for graph
// entities. An identifier is the SHA-512 digest of the entity's
// canonicalized content, so two independently constructed entities with
// the same semantic content always carry the same identifier.
package identity

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Size is the width of a Hash in bytes.
const Size = sha512.Size

// Hash is a fixed-size array representing a SHA-512 digest used as a
// content-derived identifier.
type Hash [Size]byte

// HashBytes computes the SHA-512 hash of the given data and returns it
// as a Hash.
func HashBytes(data []byte) Hash {
	return Hash(sha512.Sum512(data))
}

// HashString computes the SHA-512 hash of the given string.
func HashString(s string) Hash {
	return HashBytes([]byte(s))
}

// HashHexadecimal parses a hexadecimal string and returns the
// corresponding Hash. Returns an error if the string is not a valid
// 128-character hex representation.
func HashHexadecimal(s string) (Hash, error) {
	if len(s) != Size*2 {
		return Hash{}, fmt.Errorf(
			"invalid hex length: expected %d, got %d",
			Size*2, len(s),
		)
	}

	decoded, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("decode hex: %w", err)
	}

	var h Hash
	copy(h[:], decoded)
	return h, nil
}

// HashFields computes the digest of a composite entity. Every field is
// length-prefixed before hashing so that field boundaries are
// unambiguous: ["ab","c"] and ["a","bc"] produce different digests.
// Callers pass fields in their fixed schema order, which makes the
// digest independent of any runtime ordering concerns.
func HashFields(fields ...[]byte) Hash {
	var buffer bytes.Buffer
	var lenBuf [binary.MaxVarintLen64]byte

	for _, field := range fields {
		n := binary.PutUvarint(lenBuf[:], uint64(len(field)))
		buffer.Write(lenBuf[:n])
		buffer.Write(field)
	}

	return HashBytes(buffer.Bytes())
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// String returns the lowercase hexadecimal representation.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Equal returns true if this hash equals the other hash.
func (h Hash) Equal(other Hash) bool {
	return h == other
}

// IsZero returns true if this hash is the zero value (all bytes zero).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Compare orders two hashes by big-endian byte comparison. This is the
// canonical total order used for every iteration, tie-break and wire
// encoding in the module. It returns -1 if h < other, 0 if equal and
// +1 if h > other.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// Less reports whether h sorts before other in canonical order.
func (h Hash) Less(other Hash) bool {
	return h.Compare(other) < 0
}
