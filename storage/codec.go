package storage

import "fmt"

// KeyCodec converts the logical key K of a record type T to and from an
// [EncodedKey].
//
// EncodeKey must be deterministic and self-delimiting, and DecodeKey must be
// its left inverse. Implementations report unserializable input with
// [ErrEncoding] and malformed bytes with [ErrDecoding], and must document
// whether the byte order of encoded keys is meaningful for range scans.
type KeyCodec[T, K any] interface {
	KeyOf(record T) K
	EncodeKey(key K) (EncodedKey[T], error)
	DecodeKey(key EncodedKey[T]) (K, error)
}

// ValueCodec converts a whole record to and from the opaque bytes stored as
// its value. Both directions must be pure, and bytes of a mismatched shape
// must fail with [ErrDecoding] rather than decode to a wrong record.
type ValueCodec[T any] interface {
	EncodeValue(record T) ([]byte, error)
	DecodeValue(data []byte) (T, error)
}

// Key derives the logical key of record and encodes it.
func Key[T, K any](codec KeyCodec[T, K], record T) (EncodedKey[T], error) {
	return codec.EncodeKey(codec.KeyOf(record))
}

// Decode decodes a raw entry, as yielded by an [Iterator], into its logical
// key and record.
func Decode[T, K any](keys KeyCodec[T, K], values ValueCodec[T], key EncodedKey[T], value []byte) (K, T, error) {
	var (
		zeroK K
		zeroT T
	)

	k, err := keys.DecodeKey(key)
	if err != nil {
		return zeroK, zeroT, fmt.Errorf("failed to decode key %s: %w", key, err)
	}

	record, err := values.DecodeValue(value)
	if err != nil {
		return zeroK, zeroT, fmt.Errorf("failed to decode value for key %s: %w", key, err)
	}

	return k, record, nil
}
