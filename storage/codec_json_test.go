package storage_test

import (
	"testing"

	"github.com/picatz/kvorm/storage"
	"github.com/shoenig/test/must"
)

type note struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
	Dir   *string  `json:"dir,omitempty"`
}

func TestJSONCodec(t *testing.T) {
	codec := &storage.JSONCodec[note]{}

	dir := `C:\dir`
	for _, n := range []note{
		{},
		{Title: "hello"},
		{Title: "hello", Tags: []string{"a", "b"}, Dir: &dir},
	} {
		b, err := codec.EncodeValue(n)
		must.NoError(t, err)

		got, err := codec.DecodeValue(b)
		must.NoError(t, err)
		must.Eq(t, n, got)
	}
}

func TestJSONCodec_decode_errors(t *testing.T) {
	codec := &storage.JSONCodec[note]{}

	for _, data := range []string{
		``,
		`{"title":`,
		`{"title":1}`,
		`{"title":"a","unknown":true}`,
		`{"title":"a"} {"title":"b"}`,
		`[]`,
		`null`,
		` null `,
	} {
		_, err := codec.DecodeValue([]byte(data))
		must.ErrorIs(t, err, storage.ErrDecoding, must.Sprintf("data %q", data))
	}
}

func TestJSONCodec_encode_error(t *testing.T) {
	codec := &storage.JSONCodec[chan int]{}

	_, err := codec.EncodeValue(make(chan int))
	must.ErrorIs(t, err, storage.ErrEncoding)
}
