package command_test

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/picatz/kvorm/command"
	"github.com/picatz/kvorm/storage"
	"github.com/shoenig/test/must"
)

func TestValueCodec_round_trip(t *testing.T) {
	for _, c := range []command.Command{
		{},
		{Executable: 1, Args: []string{"arg1", "arg2", "arg3"}, CurrentDir: command.Dir(`\dir`)},
		{Executable: 2, CurrentDir: command.Dir("")},
		{Executable: 255, Args: []string{"", "ü", string(make([]byte, 200))}},
	} {
		b, err := c.Encode()
		must.NoError(t, err)

		got, err := command.Decode(b)
		must.NoError(t, err)
		must.Eq(t, c, got)
	}
}

func TestValueCodec_empty_args(t *testing.T) {
	c := command.Command{Executable: 4, Args: []string{}}

	b, err := c.Encode()
	must.NoError(t, err)

	got, err := command.Decode(b)
	must.NoError(t, err)
	must.Nil(t, got.Args)
	must.True(t, c.Equal(got))
	must.True(t, got.Equal(c))
}

func TestCommand_Equal(t *testing.T) {
	base := command.Command{Executable: 1, Args: []string{"a"}, CurrentDir: command.Dir("d")}

	must.True(t, base.Equal(command.Command{Executable: 1, Args: []string{"a"}, CurrentDir: command.Dir("d")}))
	must.False(t, base.Equal(command.Command{Executable: 2, Args: []string{"a"}, CurrentDir: command.Dir("d")}))
	must.False(t, base.Equal(command.Command{Executable: 1, Args: []string{"b"}, CurrentDir: command.Dir("d")}))
	must.False(t, base.Equal(command.Command{Executable: 1, Args: []string{"a"}, CurrentDir: command.Dir("e")}))
	must.False(t, base.Equal(command.Command{Executable: 1, Args: []string{"a"}}))
	must.False(t, command.Command{Executable: 1, Args: []string{"a"}}.Equal(base))
	must.True(t, command.Command{}.Equal(command.Command{Args: []string{}}))
}

func TestValueCodec_bytes(t *testing.T) {
	b, err := command.Command{
		Executable: 1,
		Args:       []string{"arg1", "arg2", "arg3"},
		CurrentDir: command.Dir(`\dir`),
	}.Encode()
	must.NoError(t, err)

	must.Eq(t, []byte{
		0x01, // version
		0x01, // executable
		0x03, // argument count
		0x04, 'a', 'r', 'g', '1',
		0x04, 'a', 'r', 'g', '2',
		0x04, 'a', 'r', 'g', '3',
		0x01, // current directory present
		0x04, '\\', 'd', 'i', 'r',
	}, b)

	b, err = command.Command{Executable: 9}.Encode()
	must.NoError(t, err)
	must.Eq(t, []byte{0x01, 0x09, 0x00, 0x00}, b)
}

func TestValueCodec_encode_errors(t *testing.T) {
	_, err := command.Command{Args: []string{"\xff"}}.Encode()
	must.ErrorIs(t, err, storage.ErrEncoding)

	_, err = command.Command{CurrentDir: command.Dir("\xc3\x28")}.Encode()
	must.ErrorIs(t, err, storage.ErrEncoding)
}

func TestValueCodec_decode_errors(t *testing.T) {
	valid, err := command.Command{
		Executable: 1,
		Args:       []string{"arg1", "arg2"},
		CurrentDir: command.Dir("dir"),
	}.Encode()
	must.NoError(t, err)

	// Every strict prefix of a valid value is rejected.
	for i := range len(valid) {
		_, err := command.Decode(valid[:i])
		must.ErrorIs(t, err, storage.ErrDecoding, must.Sprintf("prefix of length %d", i))
	}

	jsonValue, err := json.Marshal(command.Command{Executable: 1})
	must.NoError(t, err)

	for name, raw := range map[string][]byte{
		"trailing":           append(slices.Clone(valid), 0x00),
		"unknown version":    {0x02, 0x01, 0x00, 0x00},
		"zero version":       {0x00, 0x01, 0x00, 0x00},
		"invalid dir flag":   {0x01, 0x01, 0x00, 0x02},
		"non-minimal varint": {0x01, 0x01, 0x80, 0x00, 0x00},
		"huge count":         {0x01, 0x01, 0xff, 0xff, 0xff, 0xff, 0x0f, 0x00},
		"huge length":        {0x01, 0x01, 0x01, 0x7f, 'a', 0x00},
		"invalid utf-8 arg":  {0x01, 0x01, 0x01, 0x01, 0xff, 0x00},
		"invalid utf-8 dir":  {0x01, 0x01, 0x00, 0x01, 0x01, 0xff},
		"json shaped value":  jsonValue,
	} {
		_, err := command.Decode(raw)
		must.ErrorIs(t, err, storage.ErrDecoding, must.Sprintf("case %s", name))
	}
}

func FuzzValueCodec_DecodeValue(f *testing.F) {
	for _, c := range []command.Command{
		{},
		{Executable: 1, Args: []string{"arg1", "arg2", "arg3"}, CurrentDir: command.Dir(`\dir`)},
		{Executable: 2, CurrentDir: command.Dir("")},
	} {
		b, err := c.Encode()
		must.NoError(f, err)
		f.Add(b)
	}
	f.Add([]byte{})
	f.Add([]byte{0x01, 0x01, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01})
	f.Add([]byte(`{"executable":1}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		c, err := command.Decode(data)
		if err != nil {
			must.ErrorIs(t, err, storage.ErrDecoding)
			return
		}

		// Values are canonical: a decoded command encodes back to the same bytes.
		b, err := c.Encode()
		must.NoError(t, err)
		must.Eq(t, data, b)
	})
}
