package pebble

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/picatz/kvorm/storage"
)

// Ensure that Engine implements the storage.Engine interface.
var _ storage.Engine = (*Engine)(nil)

// Engine is a storage engine that uses Pebble as the underlying storage.
//
// Pebble can use an in-memory filesystem or a directory on disk, depending on
// the options provided. Pebble panics when a closed database is used, so the
// engine tracks its own state and returns [storage.ErrClosed] instead.
type Engine struct {
	mu     sync.RWMutex
	db     *pebble.DB
	closed bool
}

// NewEngine opens a Pebble database in dirname. Pebble creates a missing
// database unless opts.ErrorIfNotExists is set.
func NewEngine(dirname string, opts *pebble.Options) (*Engine, error) {
	db, err := pebble.Open(dirname, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}

	return &Engine{db: db}, nil
}

// DB returns the underlying Pebble database.
func (e *Engine) DB() *pebble.DB {
	return e.db
}

func (e *Engine) use(fn func(db *pebble.DB) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return storage.ErrClosed
	}
	return fn(e.db)
}

// Get retrieves a copy of the value stored at key.
func (e *Engine) Get(key []byte) (value []byte, found bool, err error) {
	err = e.use(func(db *pebble.DB) error {
		value, found, err = get(db, key)
		return err
	})
	return value, found, err
}

// NewIter returns an iterator over [lower, upper) at the current state of the
// database.
func (e *Engine) NewIter(lower, upper []byte) (it storage.RawIterator, err error) {
	err = e.use(func(db *pebble.DB) error {
		it, err = newIter(db, lower, upper)
		return err
	})
	return it, err
}

// Set stores a key-value pair.
func (e *Engine) Set(key, value []byte, opts *storage.WriteOptions) error {
	return e.use(func(db *pebble.DB) error {
		return db.Set(key, value, writeOptions(opts))
	})
}

// Delete removes the entry at key. Pebble treats a delete of a missing key as
// a successful no-op.
func (e *Engine) Delete(key []byte, opts *storage.WriteOptions) error {
	return e.use(func(db *pebble.DB) error {
		return db.Delete(key, writeOptions(opts))
	})
}

// NewSnapshot returns a point-in-time view of the database.
func (e *Engine) NewSnapshot() (snap storage.EngineSnapshot, err error) {
	err = e.use(func(db *pebble.DB) error {
		snap = &snapshot{snap: db.NewSnapshot()}
		return nil
	})
	return snap, err
}

// Flush flushes the memtable to stable storage.
func (e *Engine) Flush() error {
	return e.use(func(db *pebble.DB) error {
		if err := db.Flush(); err != nil {
			return fmt.Errorf("failed to flush pebble database: %w", err)
		}
		return nil
	})
}

// Close closes the database.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return storage.ErrClosed
	}
	e.closed = true

	if err := e.db.Close(); err != nil {
		return fmt.Errorf("failed to close pebble database: %w", err)
	}
	return nil
}

func writeOptions(opts *storage.WriteOptions) *pebble.WriteOptions {
	if opts.GetSync() {
		return pebble.Sync
	}
	return pebble.NoSync
}

// reader is implemented by both *pebble.DB and *pebble.Snapshot.
type reader interface {
	Get(key []byte) ([]byte, io.Closer, error)
	NewIter(o *pebble.IterOptions) (*pebble.Iterator, error)
}

func get(r reader, key []byte) ([]byte, bool, error) {
	valueBytes, closer, err := r.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get value: %w", err)
	}
	defer closer.Close()

	value := make([]byte, len(valueBytes))
	copy(value, valueBytes)

	return value, true, nil
}

func newIter(r reader, lower, upper []byte) (storage.RawIterator, error) {
	it, err := r.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pebble iterator: %w", err)
	}
	return &iterator{iter: it}, nil
}

type snapshot struct {
	mu     sync.RWMutex
	snap   *pebble.Snapshot
	closed bool
}

func (s *snapshot) use(fn func(snap *pebble.Snapshot) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return storage.ErrClosed
	}
	return fn(s.snap)
}

func (s *snapshot) Get(key []byte) (value []byte, found bool, err error) {
	err = s.use(func(snap *pebble.Snapshot) error {
		value, found, err = get(snap, key)
		return err
	})
	return value, found, err
}

func (s *snapshot) NewIter(lower, upper []byte) (it storage.RawIterator, err error) {
	err = s.use(func(snap *pebble.Snapshot) error {
		it, err = newIter(snap, lower, upper)
		return err
	})
	return it, err
}

func (s *snapshot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	s.closed = true

	return s.snap.Close()
}

// iterator adapts a *pebble.Iterator to the storage.RawIterator contract,
// where the first Next positions at the first key.
type iterator struct {
	iter    *pebble.Iterator
	started bool
	closed  bool
}

func (it *iterator) Next() bool {
	if it.closed {
		return false
	}
	if !it.started {
		it.started = true
		return it.iter.First()
	}
	if !it.iter.Valid() {
		return false
	}
	return it.iter.Next()
}

func (it *iterator) Key() []byte {
	if it.closed || !it.iter.Valid() {
		return nil
	}
	return it.iter.Key()
}

func (it *iterator) Value() []byte {
	if it.closed || !it.iter.Valid() {
		return nil
	}
	return it.iter.Value()
}

func (it *iterator) Error() error {
	if it.closed {
		return storage.ErrClosed
	}
	return it.iter.Error()
}

func (it *iterator) Close() error {
	if it.closed {
		return storage.ErrClosed
	}
	it.closed = true
	return it.iter.Close()
}
