package tests

import (
	"testing"

	"github.com/picatz/kvorm/storage"
	"github.com/shoenig/test/must"
)

// collect drains a raw iterator into parallel key and value slices.
func collect(t *testing.T, it storage.RawIterator) (keys []string, values []string) {
	t.Helper()

	for it.Next() {
		keys = append(keys, string(it.Key()))
		values = append(values, string(it.Value()))
	}
	must.NoError(t, it.Error())
	must.NoError(t, it.Close())

	return keys, values
}

// EngineSuite tests an engine implementation of the storage package, using
// the provided engine instance to perform the tests. The engine must be empty
// and is closed by the suite.
func EngineSuite(t *testing.T, engine storage.Engine) {
	t.Helper()

	value, ok, err := engine.Get([]byte("hello"))
	must.NoError(t, err)
	must.False(t, ok)
	must.Nil(t, value)

	err = engine.Set([]byte("hello"), []byte("world"), storage.NoSync)
	must.NoError(t, err)

	value, ok, err = engine.Get([]byte("hello"))
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "world", string(value))

	err = engine.Set([]byte("hello"), []byte("world2"), storage.Sync)
	must.NoError(t, err)

	value, ok, err = engine.Get([]byte("hello"))
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "world2", string(value))

	// Values returned by Get belong to the caller.
	value[0] = 'W'
	value, _, err = engine.Get([]byte("hello"))
	must.NoError(t, err)
	must.Eq(t, "world2", string(value))

	for _, k := range []string{"c", "a", "b", "\xff", "a\x00"} {
		must.NoError(t, engine.Set([]byte(k), []byte("v-"+k), nil))
	}

	it, err := engine.NewIter(nil, nil)
	must.NoError(t, err)
	keys, values := collect(t, it)
	must.Eq(t, []string{"a", "a\x00", "b", "c", "hello", "\xff"}, keys)
	must.Eq(t, "v-a", values[0])

	it, err = engine.NewIter([]byte("a\x00"), []byte("hello"))
	must.NoError(t, err)
	keys, _ = collect(t, it)
	must.Eq(t, []string{"a\x00", "b", "c"}, keys)

	it, err = engine.NewIter([]byte("x"), []byte("y"))
	must.NoError(t, err)
	keys, _ = collect(t, it)
	must.SliceEmpty(t, keys)

	snap, err := engine.NewSnapshot()
	must.NoError(t, err)

	// An iterator sees the entries present when it was created.
	it, err = engine.NewIter(nil, nil)
	must.NoError(t, err)

	must.NoError(t, engine.Delete([]byte("b"), nil))
	must.NoError(t, engine.Delete([]byte("does not exist"), storage.Sync))
	must.NoError(t, engine.Set([]byte("d"), []byte("v-d"), nil))

	keys, _ = collect(t, it)
	must.Eq(t, []string{"a", "a\x00", "b", "c", "hello", "\xff"}, keys)

	_, ok, err = engine.Get([]byte("b"))
	must.NoError(t, err)
	must.False(t, ok)

	value, ok, err = snap.Get([]byte("b"))
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "v-b", string(value))

	_, ok, err = snap.Get([]byte("d"))
	must.NoError(t, err)
	must.False(t, ok)

	it, err = snap.NewIter([]byte("b"), nil)
	must.NoError(t, err)
	keys, _ = collect(t, it)
	must.Eq(t, []string{"b", "c", "hello", "\xff"}, keys)

	must.NoError(t, snap.Close())
	must.ErrorIs(t, snap.Close(), storage.ErrClosed)

	_, _, err = snap.Get([]byte("b"))
	must.ErrorIs(t, err, storage.ErrClosed)

	// Closing an iterator early is valid.
	it, err = engine.NewIter(nil, nil)
	must.NoError(t, err)
	must.True(t, it.Next())
	must.NoError(t, it.Close())
	must.False(t, it.Next())

	must.NoError(t, engine.Flush())
	must.NoError(t, engine.Close())

	_, _, err = engine.Get([]byte("a"))
	must.ErrorIs(t, err, storage.ErrClosed)
	must.ErrorIs(t, engine.Set([]byte("a"), []byte("b"), nil), storage.ErrClosed)
	must.ErrorIs(t, engine.Delete([]byte("a"), nil), storage.ErrClosed)
	_, err = engine.NewIter(nil, nil)
	must.ErrorIs(t, err, storage.ErrClosed)
	_, err = engine.NewSnapshot()
	must.ErrorIs(t, err, storage.ErrClosed)
	must.ErrorIs(t, engine.Flush(), storage.ErrClosed)
	must.ErrorIs(t, engine.Close(), storage.ErrClosed)
}
