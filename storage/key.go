package storage

import (
	"encoding/hex"
	"strings"
)

// EncodedKey is the engine-level key of a record of type T.
//
// The bytes are held as a string so that keys are immutable and comparable
// with ==. T is never stored; it only prevents keys of different record types
// from being mixed up.
type EncodedKey[T any] struct {
	inner string
}

// NewEncodedKey wraps a copy of b as a key for records of type T.
func NewEncodedKey[T any](b []byte) EncodedKey[T] {
	return EncodedKey[T]{inner: string(b)}
}

// Bytes returns a copy of the key bytes.
func (k EncodedKey[T]) Bytes() []byte {
	return []byte(k.inner)
}

// Len returns the number of bytes in the key.
func (k EncodedKey[T]) Len() int {
	return len(k.inner)
}

// IsZero reports whether the key is empty.
func (k EncodedKey[T]) IsZero() bool {
	return k.inner == ""
}

// Equal reports whether k and other hold the same bytes.
func (k EncodedKey[T]) Equal(other EncodedKey[T]) bool {
	return k.inner == other.inner
}

// Compare orders keys by unsigned lexicographic byte order, which is the order
// engines iterate in. It returns -1, 0 or +1.
func (k EncodedKey[T]) Compare(other EncodedKey[T]) int {
	return strings.Compare(k.inner, other.inner)
}

// HasPrefix reports whether the key begins with prefix.
func (k EncodedKey[T]) HasPrefix(prefix []byte) bool {
	return strings.HasPrefix(k.inner, string(prefix))
}

// String returns the key as lowercase hex.
func (k EncodedKey[T]) String() string {
	return hex.EncodeToString([]byte(k.inner))
}
