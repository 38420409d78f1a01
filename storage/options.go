package storage

import (
	"log/slog"
)

// WriteOptions control the durability of a put or delete.
type WriteOptions struct {
	// Sync requests that the write is synced to stable storage before the
	// call returns. Without it the write is buffered and may be lost if the
	// process crashes before the engine flushes.
	Sync bool
}

var (
	// Sync is the durable write mode.
	Sync = &WriteOptions{Sync: true}

	// NoSync is the buffered write mode, used by [Store.Put].
	NoSync = &WriteOptions{Sync: false}
)

// GetSync reports whether o requests a synced write. A nil o does not.
func (o *WriteOptions) GetSync() bool {
	return o != nil && o.Sync
}

// ReadOptions control the consistency point and key range of a read. A nil
// *ReadOptions reads the latest committed state of the engine.
type ReadOptions struct {
	// Snapshot, when set, pins the read to the state captured by
	// [Store.NewSnapshot].
	Snapshot *Snapshot

	// LowerBound is the inclusive lower bound of an iteration.
	LowerBound []byte

	// UpperBound is the exclusive upper bound of an iteration.
	UpperBound []byte
}

// Option configures a [Store].
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *Metrics
}

// WithLogger sets the logger used by the store. The default is [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records every store operation in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
