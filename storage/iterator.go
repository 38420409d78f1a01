package storage

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
)

// Iterator is a forward, single-pass cursor over the raw entries of a store,
// in ascending byte order of keys. It sees the entries that were visible when
// it was created and cannot be rewound; iterate again with a new iterator.
//
// An Iterator pins engine resources while open and must be closed. It is not
// safe for concurrent use by multiple goroutines.
type Iterator[T any] struct {
	ctx   context.Context
	owner *lifecycle

	mu     sync.Mutex
	raw    RawIterator
	closed bool
	err    error

	key   EncodedKey[T]
	value []byte
}

// Next advances to the next entry, returning false when the iterator is
// exhausted, closed or has failed. Check [Iterator.Err] afterwards.
func (it *Iterator[T]) Next() bool {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.closed {
		if it.err == nil {
			it.err = ErrClosed
		}
		return false
	}
	if it.err != nil {
		return false
	}

	if err := it.ctx.Err(); err != nil {
		it.err = fmt.Errorf("stopped iteration via context: %w", err)
		return false
	}

	if !it.raw.Next() {
		if err := it.raw.Error(); err != nil {
			it.err = fmt.Errorf("failed to iterate: %w: %w", ErrEngine, err)
		}
		it.key, it.value = EncodedKey[T]{}, nil
		return false
	}

	it.key = NewEncodedKey[T](it.raw.Key())
	it.value = append([]byte(nil), it.raw.Value()...)
	return true
}

// Key returns the key of the current entry.
func (it *Iterator[T]) Key() EncodedKey[T] {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.key
}

// Value returns the value bytes of the current entry. The slice is owned by
// the caller.
func (it *Iterator[T]) Value() []byte {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.value
}

// Err returns the error, if any, that stopped iteration.
func (it *Iterator[T]) Err() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.err
}

// All returns the remaining entries as a sequence. Iteration stops early on
// error; check [Iterator.Err] once the loop is done.
func (it *Iterator[T]) All() iter.Seq2[EncodedKey[T], []byte] {
	return func(yield func(EncodedKey[T], []byte) bool) {
		for it.Next() {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
	}
}

// Close releases the iterator. It is valid to close an iterator before it is
// exhausted. Closing it again, or after its store was closed, returns
// [ErrClosed].
func (it *Iterator[T]) Close() error {
	if err := it.close(); err != nil {
		return err
	}
	it.owner.untrack(it)
	return nil
}

func (it *Iterator[T]) closeByOwner() error {
	err := it.close()
	if errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

func (it *Iterator[T]) close() error {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.closed {
		return ErrClosed
	}
	it.closed = true
	it.key, it.value = EncodedKey[T]{}, nil

	if err := it.raw.Close(); err != nil {
		return fmt.Errorf("failed to close iterator: %w: %w", ErrEngine, err)
	}
	return nil
}
