package storage

import (
	"errors"
	"fmt"
	"sync"
)

// Snapshot is a point-in-time view of a store, used through
// [ReadOptions.Snapshot]. It pins engine resources until closed, so it should
// be closed as soon as it is no longer needed.
type Snapshot struct {
	owner *lifecycle

	mu     sync.RWMutex
	snap   EngineSnapshot
	closed bool
}

// Close releases the snapshot. Closing an already closed snapshot, including
// one released by closing its store, returns [ErrClosed].
func (s *Snapshot) Close() error {
	if err := s.close(); err != nil {
		return err
	}
	s.owner.untrack(s)
	return nil
}

func (s *Snapshot) closeByOwner() error {
	err := s.close()
	if errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

func (s *Snapshot) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true

	if err := s.snap.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w: %w", ErrEngine, err)
	}
	return nil
}

// read runs fn against the engine snapshot while holding it open.
func (s *Snapshot) read(owner *lifecycle, fn func(Reader) error) error {
	if s.owner != owner {
		return ErrForeignSnapshot
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("snapshot: %w", ErrClosed)
	}
	return fn(s.snap)
}
