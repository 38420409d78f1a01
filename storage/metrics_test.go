package storage_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/picatz/kvorm/storage"
	"github.com/picatz/kvorm/storage/memory"
	"github.com/picatz/kvorm/storage/tests"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shoenig/test/must"
)

func TestStore_metrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	metrics, err := storage.NewMetrics(reg)
	must.NoError(t, err)

	engine := memory.NewEngine()
	store := tests.NewItemStore(engine, storage.WithMetrics(metrics))

	item := tests.Item{ID: "a", Count: 1}
	key, err := storage.Key(tests.ItemKeys{}, item)
	must.NoError(t, err)

	must.NoError(t, store.Put(t.Context(), item))
	must.Error(t, store.Put(t.Context(), tests.Item{}))

	_, _, err = store.Get(t.Context(), key)
	must.NoError(t, err)

	must.NoError(t, store.Delete(t.Context(), key, nil))

	_, ok, err := store.Get(t.Context(), key)
	must.NoError(t, err)
	must.False(t, ok)

	must.NoError(t, engine.Set(key.Bytes(), []byte("not json"), nil))
	_, _, err = store.Get(t.Context(), key)
	must.ErrorIs(t, err, storage.ErrDecoding)

	must.NoError(t, store.Close(t.Context()))
	must.ErrorIs(t, store.Flush(t.Context()), storage.ErrClosed)

	ops := metrics.Operations()
	must.Eq(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("put", "ok")))
	must.Eq(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("put", "encoding_error")))
	must.Eq(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("get", "ok")))
	must.Eq(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("get", "not_found")))
	must.Eq(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("get", "decoding_error")))
	must.Eq(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("delete", "ok")))
	must.Eq(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("flush", "closed")))

	must.Eq(t, 7, testutil.CollectAndCount(ops))

	// Registering twice with the same registry fails.
	_, err = storage.NewMetrics(reg)
	must.Error(t, err)
}

func TestStore_logs_decode_failures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	engine := memory.NewEngine()
	store := tests.NewItemStore(engine, storage.WithLogger(logger))

	key, err := storage.Key(tests.ItemKeys{}, tests.Item{ID: "broken"})
	must.NoError(t, err)

	must.NoError(t, engine.Set(key.Bytes(), []byte{0xff}, nil))

	_, _, err = store.Get(t.Context(), key)
	must.ErrorIs(t, err, storage.ErrDecoding)

	must.NoError(t, store.Close(t.Context()))

	out := buf.String()
	must.True(t, strings.Contains(out, "stored value failed to decode"))
	must.True(t, strings.Contains(out, "key="+key.String()))
	must.True(t, strings.Contains(out, "store closed"))
}
