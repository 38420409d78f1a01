package command

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/picatz/kvorm/storage"
)

// Ensure KeyCodec implements the storage.KeyCodec interface.
var _ storage.KeyCodec[Command, Key] = KeyCodec{}

// keyHeaderLen is the executable byte plus the argument count.
const keyHeaderLen = 1 + 4

// KeyCodec encodes command keys in the order-preserving format described in
// the package documentation.
type KeyCodec struct{}

// KeyOf returns the logical key of c.
func (KeyCodec) KeyOf(c Command) Key {
	return c.LogicalKey()
}

// EncodeKey encodes k. Arguments must be valid UTF-8 and fit a uint32 length.
func (KeyCodec) EncodeKey(k Key) (storage.EncodedKey[Command], error) {
	if uint64(len(k.Args)) > math.MaxUint32 {
		return storage.EncodedKey[Command]{}, fmt.Errorf("%w: too many arguments: %d", storage.ErrEncoding, len(k.Args))
	}

	size := keyHeaderLen
	for i, arg := range k.Args {
		if uint64(len(arg)) > math.MaxUint32 {
			return storage.EncodedKey[Command]{}, fmt.Errorf("%w: argument %d too long: %d bytes", storage.ErrEncoding, i, len(arg))
		}
		if !utf8.ValidString(arg) {
			return storage.EncodedKey[Command]{}, fmt.Errorf("%w: argument %d is not valid UTF-8", storage.ErrEncoding, i)
		}
		size += 4 + len(arg)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, k.Executable)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(k.Args)))
	for _, arg := range k.Args {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(arg)))
		buf = append(buf, arg...)
	}

	return storage.NewEncodedKey[Command](buf), nil
}

// DecodeKey decodes an encoded command key.
func (KeyCodec) DecodeKey(key storage.EncodedKey[Command]) (Key, error) {
	b := key.Bytes()

	if len(b) < keyHeaderLen {
		return Key{}, fmt.Errorf("%w: command key truncated: %d bytes", storage.ErrDecoding, len(b))
	}

	k := Key{Executable: b[0]}
	count := binary.BigEndian.Uint32(b[1:keyHeaderLen])
	b = b[keyHeaderLen:]

	// Every argument takes at least its 4 byte length.
	if uint64(count)*4 > uint64(len(b)) {
		return Key{}, fmt.Errorf("%w: command key truncated: %d arguments in %d bytes", storage.ErrDecoding, count, len(b))
	}

	if count > 0 {
		k.Args = make([]string, 0, count)
	}
	for i := range count {
		if len(b) < 4 {
			return Key{}, fmt.Errorf("%w: command key truncated at argument %d", storage.ErrDecoding, i)
		}
		n := binary.BigEndian.Uint32(b)
		b = b[4:]

		if uint64(n) > uint64(len(b)) {
			return Key{}, fmt.Errorf("%w: command key truncated in argument %d", storage.ErrDecoding, i)
		}
		arg := b[:n]
		b = b[n:]

		if !utf8.Valid(arg) {
			return Key{}, fmt.Errorf("%w: argument %d is not valid UTF-8", storage.ErrDecoding, i)
		}
		k.Args = append(k.Args, string(arg))
	}

	if len(b) != 0 {
		return Key{}, fmt.Errorf("%w: %d trailing bytes after command key", storage.ErrDecoding, len(b))
	}

	return k, nil
}
