package command_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/picatz/kvorm/command"
	"github.com/picatz/kvorm/storage"
	"github.com/shoenig/test/must"
)

func TestKeyCodec_round_trip(t *testing.T) {
	for _, k := range []command.Key{
		{},
		{Executable: 1, Args: []string{"arg1", "arg2", "arg3"}},
		{Executable: 255, Args: []string{"", "ü", "a\x00b", strings.Repeat("x", 300)}},
		{Executable: 7, Args: []string{""}},
	} {
		encoded, err := command.Keys.EncodeKey(k)
		must.NoError(t, err)

		decoded, err := command.Keys.DecodeKey(encoded)
		must.NoError(t, err)
		must.Eq(t, k, decoded)
		must.Eq(t, k.Args, decoded.Args)
	}
}

func TestKeyCodec_bytes(t *testing.T) {
	key, err := command.Command{Executable: 1, Args: []string{"ab", ""}}.Key()
	must.NoError(t, err)

	must.Eq(t, []byte{
		0x01,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x02, 'a', 'b',
		0x00, 0x00, 0x00, 0x00,
	}, key.Bytes())

	// The current directory is not part of the key.
	other, err := command.Command{Executable: 1, Args: []string{"ab", ""}, CurrentDir: command.Dir("/tmp")}.Key()
	must.NoError(t, err)
	must.Eq(t, key, other)

	// Nil and empty arguments are the same key.
	nilArgs, err := command.Keys.EncodeKey(command.Key{Executable: 3})
	must.NoError(t, err)
	emptyArgs, err := command.Keys.EncodeKey(command.Key{Executable: 3, Args: []string{}})
	must.NoError(t, err)
	must.Eq(t, nilArgs, emptyArgs)
}

func TestKeyCodec_order(t *testing.T) {
	// Keys in the order documented by the codec.
	ordered := []command.Key{
		{Executable: 0},
		{Executable: 0, Args: []string{"zzz"}},
		{Executable: 1},
		{Executable: 1, Args: []string{""}},
		{Executable: 1, Args: []string{"b"}},
		{Executable: 1, Args: []string{"c"}},
		{Executable: 1, Args: []string{"aa"}},
		{Executable: 1, Args: []string{"ab"}},
		{Executable: 1, Args: []string{"a", "z"}},
		{Executable: 1, Args: []string{"b", "a"}},
		{Executable: 1, Args: []string{"a", "b", "c"}},
		{Executable: 2, Args: []string{"a"}},
		{Executable: 255},
	}

	encoded := make([]storage.EncodedKey[command.Command], len(ordered))
	for i, k := range ordered {
		var err error
		encoded[i], err = command.Keys.EncodeKey(k)
		must.NoError(t, err)
	}

	for i := 1; i < len(encoded); i++ {
		must.Eq(t, -1, encoded[i-1].Compare(encoded[i]), must.Sprintf("%v < %v", ordered[i-1], ordered[i]))
	}

	shuffled := slices.Clone(encoded)
	slices.Reverse(shuffled)
	slices.SortFunc(shuffled, storage.EncodedKey[command.Command].Compare)
	must.Eq(t, encoded, shuffled)
}

func TestKeyCodec_encode_errors(t *testing.T) {
	_, err := command.Keys.EncodeKey(command.Key{Executable: 1, Args: []string{"ok", "\xff"}})
	must.ErrorIs(t, err, storage.ErrEncoding)

	_, err = command.Command{Args: []string{"\xc3"}}.Key()
	must.ErrorIs(t, err, storage.ErrEncoding)
}

func TestKeyCodec_decode_errors(t *testing.T) {
	valid, err := command.Keys.EncodeKey(command.Key{Executable: 1, Args: []string{"arg1", "arg2"}})
	must.NoError(t, err)

	b := valid.Bytes()

	// Every strict prefix of a valid key is rejected.
	for i := range len(b) {
		_, err := command.Keys.DecodeKey(storage.NewEncodedKey[command.Command](b[:i]))
		must.ErrorIs(t, err, storage.ErrDecoding, must.Sprintf("prefix of length %d", i))
	}

	for name, raw := range map[string][]byte{
		"trailing":      append(slices.Clone(b), 0x00),
		"huge count":    {0x01, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00},
		"huge length":   {0x01, 0x00, 0x00, 0x00, 0x01, 0xff, 0xff, 0xff, 0xff, 'a'},
		"invalid utf-8": {0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0xff},
	} {
		_, err := command.Keys.DecodeKey(storage.NewEncodedKey[command.Command](raw))
		must.ErrorIs(t, err, storage.ErrDecoding, must.Sprintf("case %s", name))
	}
}

func TestRange(t *testing.T) {
	opts := command.Range(1)
	must.Eq(t, []byte{0x01}, opts.LowerBound)
	must.Eq(t, []byte{0x02}, opts.UpperBound)

	opts = command.Range(255)
	must.Eq(t, []byte{0xff}, opts.LowerBound)
	must.Nil(t, opts.UpperBound)

	key, err := command.Command{Executable: 1, Args: []string{"x"}}.Key()
	must.NoError(t, err)
	must.True(t, key.HasPrefix(command.Range(1).LowerBound))
}

func FuzzKeyCodec_DecodeKey(f *testing.F) {
	for _, k := range []command.Key{
		{},
		{Executable: 1, Args: []string{"arg1", "arg2", "arg3"}},
		{Executable: 255, Args: []string{"", "ü"}},
	} {
		key, err := command.Keys.EncodeKey(k)
		must.NoError(f, err)
		f.Add(key.Bytes())
	}
	f.Add([]byte{})
	f.Add([]byte{0x01, 0xff, 0xff, 0xff, 0xff})
	f.Add([]byte{0x01, 0x00, 0x00, 0x00, 0x01, 0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		k, err := command.Keys.DecodeKey(storage.NewEncodedKey[command.Command](data))
		if err != nil {
			must.ErrorIs(t, err, storage.ErrDecoding)
			return
		}

		// Keys are canonical: a decoded key encodes back to the same bytes.
		key, err := command.Keys.EncodeKey(k)
		must.NoError(t, err)
		must.Eq(t, data, key.Bytes())
	})
}
