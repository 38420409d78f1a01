package command

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/multiformats/go-varint"
	"github.com/picatz/kvorm/storage"
)

// Ensure ValueCodec implements the storage.ValueCodec interface.
var _ storage.ValueCodec[Command] = ValueCodec{}

// valueVersion is the first byte of every encoded command value.
const valueVersion = 1

const (
	dirAbsent  = 0
	dirPresent = 1
)

// ValueCodec encodes whole commands in the versioned format described in the
// package documentation.
type ValueCodec struct{}

// EncodeValue encodes c. All strings must be valid UTF-8.
func (ValueCodec) EncodeValue(c Command) ([]byte, error) {
	buf := []byte{valueVersion, c.Executable}
	buf = append(buf, varint.ToUvarint(uint64(len(c.Args)))...)

	for i, arg := range c.Args {
		if !utf8.ValidString(arg) {
			return nil, fmt.Errorf("%w: argument %d is not valid UTF-8", storage.ErrEncoding, i)
		}
		buf = appendString(buf, arg)
	}

	if c.CurrentDir == nil {
		return append(buf, dirAbsent), nil
	}

	if !utf8.ValidString(*c.CurrentDir) {
		return nil, fmt.Errorf("%w: current directory is not valid UTF-8", storage.ErrEncoding)
	}
	buf = append(buf, dirPresent)
	buf = appendString(buf, *c.CurrentDir)

	return buf, nil
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, varint.ToUvarint(uint64(len(s)))...)
	return append(buf, s...)
}

// DecodeValue decodes an encoded command value.
func (ValueCodec) DecodeValue(data []byte) (Command, error) {
	c, err := decodeValue(&valueReader{buf: data})
	if err != nil {
		return Command{}, fmt.Errorf("%w: %w", storage.ErrDecoding, err)
	}
	return c, nil
}

var errTruncated = errors.New("command value truncated")

func decodeValue(r *valueReader) (Command, error) {
	version, err := r.readByte()
	if err != nil {
		return Command{}, err
	}
	if version != valueVersion {
		return Command{}, fmt.Errorf("unsupported command value version %d", version)
	}

	var c Command

	if c.Executable, err = r.readByte(); err != nil {
		return Command{}, err
	}

	count, err := r.readUvarint()
	if err != nil {
		return Command{}, err
	}
	// Every argument takes at least its 1 byte length.
	if count > uint64(r.remaining()) {
		return Command{}, fmt.Errorf("%w: %d arguments in %d bytes", errTruncated, count, r.remaining())
	}

	if count > 0 {
		c.Args = make([]string, 0, count)
	}
	for i := range count {
		arg, err := r.readString()
		if err != nil {
			return Command{}, fmt.Errorf("argument %d: %w", i, err)
		}
		c.Args = append(c.Args, arg)
	}

	flag, err := r.readByte()
	if err != nil {
		return Command{}, err
	}
	switch flag {
	case dirAbsent:
	case dirPresent:
		dir, err := r.readString()
		if err != nil {
			return Command{}, fmt.Errorf("current directory: %w", err)
		}
		c.CurrentDir = &dir
	default:
		return Command{}, fmt.Errorf("invalid current directory flag %#x", flag)
	}

	if r.remaining() != 0 {
		return Command{}, fmt.Errorf("%d trailing bytes after command value", r.remaining())
	}

	return c, nil
}

type valueReader struct {
	buf []byte
}

func (r *valueReader) remaining() int {
	return len(r.buf)
}

func (r *valueReader) readByte() (byte, error) {
	if len(r.buf) == 0 {
		return 0, errTruncated
	}
	b := r.buf[0]
	r.buf = r.buf[1:]
	return b, nil
}

func (r *valueReader) readUvarint() (uint64, error) {
	x, n, err := varint.FromUvarint(r.buf)
	if err != nil {
		return 0, err
	}
	r.buf = r.buf[n:]
	return x, nil
}

func (r *valueReader) readString() (string, error) {
	n, err := r.readUvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(len(r.buf)) {
		return "", errTruncated
	}

	s := r.buf[:n]
	r.buf = r.buf[n:]

	if !utf8.Valid(s) {
		return "", errors.New("not valid UTF-8")
	}
	return string(s), nil
}
