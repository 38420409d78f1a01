package storage

import "errors"

var (
	// ErrEncoding is returned when a key or value cannot be serialized.
	ErrEncoding = errors.New("storage: encoding error")

	// ErrDecoding is returned when bytes do not parse as the expected key or
	// value. A present but undecodable value is reported with this error, never
	// as absence.
	ErrDecoding = errors.New("storage: decoding error")

	// ErrEngine wraps failures reported by the underlying engine.
	ErrEngine = errors.New("storage: engine error")

	// ErrClosed is returned by any operation on a closed store, engine,
	// iterator or snapshot.
	ErrClosed = errors.New("storage: closed")

	// ErrForeignSnapshot is returned when a read uses a snapshot created by a
	// different store.
	ErrForeignSnapshot = errors.New("storage: snapshot belongs to a different store")
)
