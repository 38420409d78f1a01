package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/picatz/kvorm/storage"
	"github.com/shoenig/test/must"
)

// Item is a small record used to exercise a [storage.Store]. Its logical key
// is ID.
type Item struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Ensure that ItemKeys implements the storage.KeyCodec interface.
var _ storage.KeyCodec[Item, string] = ItemKeys{}

// ItemKeys encodes an item's ID as its raw bytes, which is order-preserving:
// keys sort as their IDs do.
type ItemKeys struct{}

func (ItemKeys) KeyOf(item Item) string {
	return item.ID
}

func (ItemKeys) EncodeKey(id string) (storage.EncodedKey[Item], error) {
	if id == "" {
		return storage.EncodedKey[Item]{}, fmt.Errorf("%w: empty item id", storage.ErrEncoding)
	}
	return storage.NewEncodedKey[Item]([]byte(id)), nil
}

func (ItemKeys) DecodeKey(key storage.EncodedKey[Item]) (string, error) {
	if key.IsZero() {
		return "", fmt.Errorf("%w: empty item key", storage.ErrDecoding)
	}
	return string(key.Bytes()), nil
}

// NewItemStore creates an item store on top of engine.
func NewItemStore(engine storage.Engine, opts ...storage.Option) *storage.Store[Item, string] {
	return storage.New(engine, ItemKeys{}, &storage.JSONCodec[Item]{}, opts...)
}

func itemKey(t *testing.T, item Item) storage.EncodedKey[Item] {
	t.Helper()

	key, err := storage.Key(ItemKeys{}, item)
	must.NoError(t, err)
	return key
}

// StoreSuite tests a store on top of an engine implementation, using
// newEngine to create a fresh, empty engine for each case.
func StoreSuite(t *testing.T, newEngine func(t *testing.T) storage.Engine) {
	t.Helper()

	t.Run("put get delete", func(t *testing.T) {
		store := NewItemStore(newEngine(t))
		t.Cleanup(func() { _ = store.Close(context.Background()) })

		item := Item{ID: "hello", Count: 1}
		key := itemKey(t, item)

		_, ok, err := store.Get(t.Context(), key)
		must.NoError(t, err)
		must.False(t, ok)

		must.NoError(t, store.Put(t.Context(), item))

		got, ok, err := store.Get(t.Context(), key)
		must.NoError(t, err)
		must.True(t, ok)
		must.Eq(t, item, got)

		// Putting the same record again is idempotent.
		must.NoError(t, store.PutWithOptions(t.Context(), item, storage.Sync))

		it, err := store.Iter(t.Context(), nil)
		must.NoError(t, err)
		var n int
		for range it.All() {
			n++
		}
		must.NoError(t, it.Err())
		must.NoError(t, it.Close())
		must.Eq(t, 1, n)

		// A put with the same key replaces the value.
		item.Count = 2
		must.NoError(t, store.Put(t.Context(), item))

		got, ok, err = store.Get(t.Context(), key)
		must.NoError(t, err)
		must.True(t, ok)
		must.Eq(t, 2, got.Count)

		must.NoError(t, store.Delete(t.Context(), key, storage.NoSync))

		_, ok, err = store.Get(t.Context(), key)
		must.NoError(t, err)
		must.False(t, ok)

		// Deleting a missing key is a no-op.
		must.NoError(t, store.Delete(t.Context(), key, nil))
	})

	t.Run("encoding error", func(t *testing.T) {
		store := NewItemStore(newEngine(t))
		t.Cleanup(func() { _ = store.Close(context.Background()) })

		err := store.Put(t.Context(), Item{})
		must.ErrorIs(t, err, storage.ErrEncoding)

		it, err := store.Iter(t.Context(), nil)
		must.NoError(t, err)
		must.False(t, it.Next())
		must.NoError(t, it.Close())
	})

	t.Run("iteration order", func(t *testing.T) {
		store := NewItemStore(newEngine(t))
		t.Cleanup(func() { _ = store.Close(context.Background()) })

		for i, id := range []string{"b", "c", "a", "ab"} {
			must.NoError(t, store.Put(t.Context(), Item{ID: id, Count: i}))
		}

		it, err := store.Iter(t.Context(), nil)
		must.NoError(t, err)

		var (
			ids  []string
			prev storage.EncodedKey[Item]
		)
		for key, value := range it.All() {
			if !prev.IsZero() {
				must.Eq(t, 1, key.Compare(prev))
			}
			prev = key

			id, item, err := storage.Decode(store.KeyCodec(), store.ValueCodec(), key, value)
			must.NoError(t, err)
			must.Eq(t, id, item.ID)
			ids = append(ids, id)
		}
		must.NoError(t, it.Err())
		must.NoError(t, it.Close())
		must.Eq(t, []string{"a", "ab", "b", "c"}, ids)

		it, err = store.Iter(t.Context(), &storage.ReadOptions{
			LowerBound: []byte("ab"),
			UpperBound: []byte("c"),
		})
		must.NoError(t, err)

		ids = nil
		for key := range it.All() {
			ids = append(ids, string(key.Bytes()))
		}
		must.NoError(t, it.Err())
		must.NoError(t, it.Close())
		must.Eq(t, []string{"ab", "b"}, ids)

		// An exhausted iterator stays exhausted.
		must.False(t, it.Next())
	})

	t.Run("corrupt value", func(t *testing.T) {
		engine := newEngine(t)
		store := NewItemStore(engine)
		t.Cleanup(func() { _ = store.Close(context.Background()) })

		item := Item{ID: "corrupt", Count: 7}
		must.NoError(t, store.Put(t.Context(), item))

		key := itemKey(t, item)
		value, ok, err := engine.Get(key.Bytes())
		must.NoError(t, err)
		must.True(t, ok)

		for _, corrupted := range [][]byte{
			value[:len(value)/2],
			{},
			[]byte(`{"id":"corrupt","count":"seven"}`),
			[]byte(`{"id":"corrupt","count":7,"extra":true}`),
			append(append([]byte(nil), value...), []byte(`{}`)...),
		} {
			must.NoError(t, engine.Set(key.Bytes(), corrupted, nil))

			_, ok, err = store.Get(t.Context(), key)
			must.ErrorIs(t, err, storage.ErrDecoding)
			must.False(t, ok)
		}
	})

	t.Run("snapshot", func(t *testing.T) {
		store := NewItemStore(newEngine(t))
		t.Cleanup(func() { _ = store.Close(context.Background()) })

		must.NoError(t, store.Put(t.Context(), Item{ID: "a", Count: 1}))

		snap, err := store.NewSnapshot(t.Context())
		must.NoError(t, err)

		must.NoError(t, store.Put(t.Context(), Item{ID: "a", Count: 2}))
		must.NoError(t, store.Put(t.Context(), Item{ID: "b", Count: 1}))

		opts := &storage.ReadOptions{Snapshot: snap}

		got, ok, err := store.GetWithOptions(t.Context(), itemKey(t, Item{ID: "a"}), opts)
		must.NoError(t, err)
		must.True(t, ok)
		must.Eq(t, 1, got.Count)

		_, ok, err = store.GetWithOptions(t.Context(), itemKey(t, Item{ID: "b"}), opts)
		must.NoError(t, err)
		must.False(t, ok)

		it, err := store.Iter(t.Context(), opts)
		must.NoError(t, err)
		var n int
		for range it.All() {
			n++
		}
		must.NoError(t, it.Close())
		must.Eq(t, 1, n)

		must.NoError(t, snap.Close())
		must.ErrorIs(t, snap.Close(), storage.ErrClosed)

		_, _, err = store.GetWithOptions(t.Context(), itemKey(t, Item{ID: "a"}), opts)
		must.ErrorIs(t, err, storage.ErrClosed)

		// Snapshots cannot be used with another store.
		other := NewItemStore(newEngine(t))
		t.Cleanup(func() { _ = other.Close(context.Background()) })

		snap, err = store.NewSnapshot(t.Context())
		must.NoError(t, err)
		_, _, err = other.GetWithOptions(t.Context(), itemKey(t, Item{ID: "a"}), &storage.ReadOptions{Snapshot: snap})
		must.ErrorIs(t, err, storage.ErrForeignSnapshot)
		_, err = other.Iter(t.Context(), &storage.ReadOptions{Snapshot: snap})
		must.ErrorIs(t, err, storage.ErrForeignSnapshot)
		must.NoError(t, snap.Close())
	})

	t.Run("canceled context", func(t *testing.T) {
		store := NewItemStore(newEngine(t))
		t.Cleanup(func() { _ = store.Close(context.Background()) })

		must.NoError(t, store.Put(t.Context(), Item{ID: "a"}))
		must.NoError(t, store.Put(t.Context(), Item{ID: "b"}))

		ctx, cancel := context.WithCancel(t.Context())

		it, err := store.Iter(ctx, nil)
		must.NoError(t, err)
		must.True(t, it.Next())

		cancel()

		must.False(t, it.Next())
		must.ErrorIs(t, it.Err(), context.Canceled)
		must.NoError(t, it.Close())

		err = store.Put(ctx, Item{ID: "c"})
		must.ErrorIs(t, err, context.Canceled)
	})

	t.Run("closed", func(t *testing.T) {
		store := NewItemStore(newEngine(t))

		item := Item{ID: "a", Count: 1}
		must.NoError(t, store.Put(t.Context(), item))

		it, err := store.Iter(t.Context(), nil)
		must.NoError(t, err)
		must.True(t, it.Next())

		snap, err := store.NewSnapshot(t.Context())
		must.NoError(t, err)

		must.NoError(t, store.Close(t.Context()))

		// Iterators and snapshots are released with the store.
		must.False(t, it.Next())
		must.ErrorIs(t, it.Err(), storage.ErrClosed)
		must.ErrorIs(t, it.Close(), storage.ErrClosed)
		must.ErrorIs(t, snap.Close(), storage.ErrClosed)

		key := itemKey(t, item)

		must.ErrorIs(t, store.Put(t.Context(), item), storage.ErrClosed)
		_, _, err = store.Get(t.Context(), key)
		must.ErrorIs(t, err, storage.ErrClosed)
		must.ErrorIs(t, store.Delete(t.Context(), key, nil), storage.ErrClosed)
		_, err = store.Iter(t.Context(), nil)
		must.ErrorIs(t, err, storage.ErrClosed)
		_, err = store.NewSnapshot(t.Context())
		must.ErrorIs(t, err, storage.ErrClosed)
		must.ErrorIs(t, store.Flush(t.Context()), storage.ErrClosed)
		must.ErrorIs(t, store.Close(t.Context()), storage.ErrClosed)

		must.False(t, errors.Is(err, storage.ErrEngine))

		// A closed store is reported before invalid input or a done context.
		err = store.Put(t.Context(), Item{})
		must.ErrorIs(t, err, storage.ErrClosed)
		must.False(t, errors.Is(err, storage.ErrEncoding))

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err = store.Put(ctx, item)
		must.ErrorIs(t, err, storage.ErrClosed)
		must.False(t, errors.Is(err, context.Canceled))
		_, _, err = store.Get(ctx, key)
		must.ErrorIs(t, err, storage.ErrClosed)
		must.ErrorIs(t, store.Delete(ctx, key, nil), storage.ErrClosed)
		_, err = store.Iter(ctx, nil)
		must.ErrorIs(t, err, storage.ErrClosed)
		_, err = store.NewSnapshot(ctx)
		must.ErrorIs(t, err, storage.ErrClosed)
		must.ErrorIs(t, store.Flush(ctx), storage.ErrClosed)
	})
}
