package storage

// Reader is the read half of an engine. Both an [Engine] and the snapshots it
// hands out implement it.
type Reader interface {
	// Get returns a copy of the value stored at key. A missing key is reported
	// with found == false and a nil error.
	Get(key []byte) (value []byte, found bool, err error)

	// NewIter returns an iterator over the keys in [lower, upper), in ascending
	// byte order. A nil bound is unbounded on that side. The iterator observes
	// the state of the reader at the time it was created.
	NewIter(lower, upper []byte) (RawIterator, error)
}

// RawIterator is a forward cursor over raw engine entries.
//
// The first call to Next positions the iterator at the first entry. Key and
// Value are only valid until the following call to Next, so callers that keep
// them must copy. Close must always be called.
type RawIterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// EngineSnapshot is a point-in-time, read-only view of an engine.
type EngineSnapshot interface {
	Reader
	Close() error
}

// Engine is an ordered, byte-keyed store that orders keys by unsigned
// lexicographic byte order. Implementations must be safe for concurrent use
// and must return [ErrClosed] from every method once closed.
type Engine interface {
	Reader
	Set(key, value []byte, opts *WriteOptions) error
	Delete(key []byte, opts *WriteOptions) error
	NewSnapshot() (EngineSnapshot, error)
	Flush() error
	Close() error
}
