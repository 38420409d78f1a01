package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Ensure JSONCodec implements the ValueCodec interface.
var _ ValueCodec[any] = (*JSONCodec[any])(nil)

// JSONCodec is a value codec for any record type that can be represented as
// JSON using standard Go JSON serialization.
//
// Decoding is strict: unknown fields, a bare null and trailing data are
// rejected, so a value written for a different record shape fails with
// [ErrDecoding]. Record types whose zero value marshals to null, such as nil
// slices and maps, therefore do not round trip at their zero value.
type JSONCodec[T any] struct{}

// EncodeValue encodes a record into a JSON byte slice.
func (c *JSONCodec[T]) EncodeValue(record T) ([]byte, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return b, nil
}

// DecodeValue decodes a JSON byte slice into a record.
func (c *JSONCodec[T]) DecodeValue(data []byte) (T, error) {
	var (
		zero   T
		record *T
	)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&record); err != nil {
		return zero, fmt.Errorf("%w: %w", ErrDecoding, err)
	}
	if record == nil {
		return zero, fmt.Errorf("%w: null JSON value", ErrDecoding)
	}

	if _, err := dec.Token(); err != io.EOF {
		return zero, fmt.Errorf("%w: trailing data after JSON value", ErrDecoding)
	}

	return *record, nil
}
