// Package memory provides an in-memory, ordered storage engine.
//
// Every write produces a new sorted copy of the entry list, so snapshots and
// iterators are free to hold on to the list they started with. This keeps
// reads simple at the cost of O(n) writes, which is fine for tests and
// throwaway stores.
package memory

import (
	"bytes"
	"slices"
	"sync"

	"github.com/picatz/kvorm/storage"
)

// Ensure that Engine implements the storage.Engine interface.
var _ storage.Engine = (*Engine)(nil)

type entry struct {
	key   []byte
	value []byte
}

func compareEntry(e entry, key []byte) int {
	return bytes.Compare(e.key, key)
}

// Engine is an in-memory storage engine ordered by unsigned byte order.
type Engine struct {
	mu      sync.RWMutex
	entries []entry
	closed  bool
}

// NewEngine creates a new, empty in-memory engine.
func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) current() ([]entry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, storage.ErrClosed
	}
	return e.entries, nil
}

// Get retrieves a copy of the value stored at key.
func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	entries, err := e.current()
	if err != nil {
		return nil, false, err
	}
	return get(entries, key)
}

// NewIter returns an iterator over the entries present when it is called.
func (e *Engine) NewIter(lower, upper []byte) (storage.RawIterator, error) {
	entries, err := e.current()
	if err != nil {
		return nil, err
	}
	return newIter(entries, lower, upper), nil
}

// Set stores a copy of key and value. Write options are accepted for
// interface compatibility; memory writes are never durable.
func (e *Engine) Set(key, value []byte, _ *storage.WriteOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return storage.ErrClosed
	}

	ent := entry{key: bytes.Clone(key), value: bytes.Clone(value)}
	if ent.value == nil {
		ent.value = []byte{}
	}

	i, found := slices.BinarySearchFunc(e.entries, key, compareEntry)

	next := slices.Clone(e.entries)
	if found {
		next[i] = ent
	} else {
		next = slices.Insert(next, i, ent)
	}
	e.entries = next

	return nil
}

// Delete removes the entry at key, if any.
func (e *Engine) Delete(key []byte, _ *storage.WriteOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return storage.ErrClosed
	}

	i, found := slices.BinarySearchFunc(e.entries, key, compareEntry)
	if !found {
		return nil
	}

	next := slices.Clone(e.entries)
	e.entries = slices.Delete(next, i, i+1)

	return nil
}

// NewSnapshot returns a view of the entries present when it is called.
func (e *Engine) NewSnapshot() (storage.EngineSnapshot, error) {
	entries, err := e.current()
	if err != nil {
		return nil, err
	}
	return &snapshot{entries: entries}, nil
}

// Flush is a no-op for the in-memory engine.
func (e *Engine) Flush() error {
	_, err := e.current()
	return err
}

// Close discards all entries. Snapshots and iterators taken before Close keep
// working until they are closed themselves.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return storage.ErrClosed
	}
	e.closed = true
	e.entries = nil

	return nil
}

func get(entries []entry, key []byte) ([]byte, bool, error) {
	i, found := slices.BinarySearchFunc(entries, key, compareEntry)
	if !found {
		return nil, false, nil
	}
	return bytes.Clone(entries[i].value), true, nil
}

type snapshot struct {
	mu      sync.RWMutex
	entries []entry
	closed  bool
}

func (s *snapshot) current() ([]entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	return s.entries, nil
}

func (s *snapshot) Get(key []byte) ([]byte, bool, error) {
	entries, err := s.current()
	if err != nil {
		return nil, false, err
	}
	return get(entries, key)
}

func (s *snapshot) NewIter(lower, upper []byte) (storage.RawIterator, error) {
	entries, err := s.current()
	if err != nil {
		return nil, err
	}
	return newIter(entries, lower, upper), nil
}

func (s *snapshot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	s.closed = true
	s.entries = nil

	return nil
}

type iterator struct {
	entries []entry
	pos     int
	closed  bool
}

func newIter(entries []entry, lower, upper []byte) *iterator {
	start := 0
	if lower != nil {
		start, _ = slices.BinarySearchFunc(entries, lower, compareEntry)
	}

	end := len(entries)
	if upper != nil {
		end, _ = slices.BinarySearchFunc(entries, upper, compareEntry)
	}
	if end < start {
		end = start
	}

	return &iterator{entries: entries[start:end], pos: -1}
}

func (it *iterator) Next() bool {
	if it.closed || it.pos >= len(it.entries) {
		return false
	}
	it.pos++
	return it.pos < len(it.entries)
}

func (it *iterator) valid() bool {
	return !it.closed && it.pos >= 0 && it.pos < len(it.entries)
}

func (it *iterator) Key() []byte {
	if !it.valid() {
		return nil
	}
	return it.entries[it.pos].key
}

func (it *iterator) Value() []byte {
	if !it.valid() {
		return nil
	}
	return it.entries[it.pos].value
}

func (it *iterator) Error() error {
	if it.closed {
		return storage.ErrClosed
	}
	return nil
}

func (it *iterator) Close() error {
	if it.closed {
		return storage.ErrClosed
	}
	it.closed = true
	it.entries = nil
	return nil
}
