package storage

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation names used as the "op" label of [Metrics].
const (
	opPut      = "put"
	opGet      = "get"
	opDelete   = "delete"
	opIter     = "iter"
	opSnapshot = "snapshot"
	opFlush    = "flush"
)

// Metrics counts store operations by operation and result.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics creates the store counters and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvorm",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Number of store operations, partitioned by operation and result.",
		}, []string{"op", "result"}),
	}

	if reg != nil {
		if err := reg.Register(m.operations); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Operations returns the underlying counter vector, labelled by "op" and "result".
func (m *Metrics) Operations() *prometheus.CounterVec {
	return m.operations
}

func (m *Metrics) observe(op, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) observeErr(op string, err error) {
	if m == nil {
		return
	}
	m.observe(op, resultOf(err))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, ErrEncoding):
		return "encoding_error"
	case errors.Is(err, ErrDecoding):
		return "decoding_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "engine_error"
	}
}
