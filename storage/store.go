package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"
)

// Store is a typed handle over an [Engine] for records of type T with logical
// keys of type K. Only an [EncodedKey] of T can address its entries.
//
// A Store is safe for concurrent use. It adds no coordination between calls:
// two concurrent puts to the same key race in the engine and the last write
// wins. A Store dedicated to one key encoding is assumed; iterating an engine
// shared with other record types yields their entries too.
type Store[T, K any] struct {
	engine  Engine
	keys    KeyCodec[T, K]
	values  ValueCodec[T]
	logger  *slog.Logger
	metrics *Metrics

	lc lifecycle
}

// New creates a store for records of type T on top of engine. The store takes
// ownership of the engine and closes it in [Store.Close].
func New[T, K any](engine Engine, keys KeyCodec[T, K], values ValueCodec[T], opts ...Option) *Store[T, K] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[T, K]{
		engine:  engine,
		keys:    keys,
		values:  values,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// KeyCodec returns the key codec of the store.
func (s *Store[T, K]) KeyCodec() KeyCodec[T, K] {
	return s.keys
}

// ValueCodec returns the value codec of the store.
func (s *Store[T, K]) ValueCodec() ValueCodec[T] {
	return s.values
}

// Put stores record under its derived key using a buffered write.
func (s *Store[T, K]) Put(ctx context.Context, record T) error {
	return s.PutWithOptions(ctx, record, NoSync)
}

// PutWithOptions stores record under its derived key. Both the key and the
// value are encoded before the engine is written, so a failed put has no
// effect.
func (s *Store[T, K]) PutWithOptions(ctx context.Context, record T, opts *WriteOptions) (err error) {
	defer func() { s.metrics.observeErr(opPut, err) }()

	return s.use(ctx, func() error {
		key, err := Key(s.keys, record)
		if err != nil {
			return fmt.Errorf("failed to encode key: %w", withKind(ErrEncoding, err))
		}

		value, err := s.values.EncodeValue(record)
		if err != nil {
			return fmt.Errorf("failed to encode value: %w", withKind(ErrEncoding, err))
		}

		if err := s.engine.Set(key.Bytes(), value, opts); err != nil {
			return fmt.Errorf("failed to set value: %w", withKind(ErrEngine, err))
		}
		return nil
	})
}

// Get retrieves the record stored at key using the engine's default
// consistency.
func (s *Store[T, K]) Get(ctx context.Context, key EncodedKey[T]) (T, bool, error) {
	return s.GetWithOptions(ctx, key, nil)
}

// GetWithOptions retrieves the record stored at key. A missing key returns
// found == false and a nil error; a stored value that does not decode returns
// an error wrapping [ErrDecoding].
func (s *Store[T, K]) GetWithOptions(ctx context.Context, key EncodedKey[T], opts *ReadOptions) (record T, found bool, err error) {
	defer func() {
		if err == nil && !found {
			s.metrics.observe(opGet, "not_found")
			return
		}
		s.metrics.observeErr(opGet, err)
	}()

	var value []byte
	err = s.use(ctx, func() error {
		return s.read(opts, func(r Reader) error {
			var err error
			value, found, err = r.Get(key.Bytes())
			return err
		})
	})

	var zero T
	if err != nil {
		return zero, false, fmt.Errorf("failed to get value: %w", err)
	}
	if !found {
		return zero, false, nil
	}

	record, err = s.values.DecodeValue(value)
	if err != nil {
		s.logger.Warn("stored value failed to decode", "key", key.String(), "error", err)
		return zero, false, fmt.Errorf("failed to decode value: %w", withKind(ErrDecoding, err))
	}

	return record, true, nil
}

// Delete removes the entry at key. Deleting a missing key is not an error.
// A nil opts uses a buffered write.
func (s *Store[T, K]) Delete(ctx context.Context, key EncodedKey[T], opts *WriteOptions) (err error) {
	defer func() { s.metrics.observeErr(opDelete, err) }()

	return s.use(ctx, func() error {
		if err := s.engine.Delete(key.Bytes(), opts); err != nil {
			return fmt.Errorf("failed to delete key: %w", withKind(ErrEngine, err))
		}
		return nil
	})
}

// Iter returns an iterator over the raw entries of the store in ascending
// byte order of keys, limited to the bounds in opts. The iterator must be
// closed. Entries are not decoded; use [Decode] or the store's codecs.
func (s *Store[T, K]) Iter(ctx context.Context, opts *ReadOptions) (it *Iterator[T], err error) {
	defer func() { s.metrics.observeErr(opIter, err) }()

	var lower, upper []byte
	if opts != nil {
		lower, upper = opts.LowerBound, opts.UpperBound
	}

	err = s.use(ctx, func() error {
		return s.read(opts, func(r Reader) error {
			raw, err := r.NewIter(lower, upper)
			if err != nil {
				return err
			}
			// Tracked while the store is held open, so Close cannot miss it.
			it = &Iterator[T]{
				ctx:   ctx,
				owner: &s.lc,
				raw:   raw,
			}
			s.lc.track(it)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}

	return it, nil
}

// NewSnapshot captures the current state of the store for consistent reads
// through [ReadOptions.Snapshot]. The snapshot must be closed.
func (s *Store[T, K]) NewSnapshot(ctx context.Context) (snap *Snapshot, err error) {
	defer func() { s.metrics.observeErr(opSnapshot, err) }()

	err = s.use(ctx, func() error {
		es, err := s.engine.NewSnapshot()
		if err != nil {
			return withKind(ErrEngine, err)
		}

		snap = &Snapshot{owner: &s.lc, snap: es}
		s.lc.track(snap)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}

	return snap, nil
}

// Flush flushes buffered writes in the engine.
func (s *Store[T, K]) Flush(ctx context.Context) (err error) {
	defer func() { s.metrics.observeErr(opFlush, err) }()

	return s.use(ctx, func() error {
		if err := s.engine.Flush(); err != nil {
			return fmt.Errorf("failed to flush engine: %w", withKind(ErrEngine, err))
		}
		return nil
	})
}

// Close releases every open iterator and snapshot of the store and closes the
// engine. Every later call on the store, including Close, returns [ErrClosed].
func (s *Store[T, K]) Close(ctx context.Context) error {
	s.lc.mu.Lock()
	defer s.lc.mu.Unlock()

	if s.lc.closed {
		return ErrClosed
	}
	s.lc.closed = true

	err := s.lc.releaseAll()
	if cerr := s.engine.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to close engine: %w", withKind(ErrEngine, cerr)))
	}

	s.logger.DebugContext(ctx, "store closed", "error", err)
	return err
}

// use runs fn while the store is held open. A closed store fails with
// [ErrClosed] before ctx or any input is looked at.
func (s *Store[T, K]) use(ctx context.Context, fn func() error) error {
	s.lc.mu.RLock()
	defer s.lc.mu.RUnlock()

	if s.lc.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("stopped via context: %w", err)
	}
	return fn()
}

// read runs fn against the reader selected by opts. The caller must hold the
// store open. Errors from fn are wrapped with [ErrEngine].
func (s *Store[T, K]) read(opts *ReadOptions, fn func(Reader) error) error {
	call := func(r Reader) error {
		if err := fn(r); err != nil {
			return withKind(ErrEngine, err)
		}
		return nil
	}

	if opts != nil && opts.Snapshot != nil {
		return opts.Snapshot.read(&s.lc, call)
	}
	return call(s.engine)
}

// withKind makes err match kind with errors.Is, unless it already does.
func withKind(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
