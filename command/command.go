package command

import (
	"fmt"
	"slices"
	"strings"

	"github.com/picatz/kvorm/storage"
)

// Command is a program invocation: which executable to run, its arguments,
// and optionally the directory to run it in.
//
// Executable and Args form the logical key. Changing either on a stored
// command and deriving its key again addresses a different entry.
//
// Decoding normalizes an empty Args to nil. Compare commands with
// [Command.Equal], which treats the two as the same.
type Command struct {
	Executable uint8    `json:"executable"`
	Args       []string `json:"args,omitempty"`
	CurrentDir *string  `json:"current_dir,omitempty"`
}

// Key is the logical key of a [Command]. A nil and an empty Args are the same
// key; decoding yields nil.
type Key struct {
	Executable uint8
	Args       []string
}

// Equal reports whether k and other identify the same command.
func (k Key) Equal(other Key) bool {
	return k.Executable == other.Executable && slices.Equal(k.Args, other.Args)
}

// Equal reports whether c and other are the same command: equal logical keys
// and equal current directories, compared by value.
func (c Command) Equal(other Command) bool {
	if !c.LogicalKey().Equal(other.LogicalKey()) {
		return false
	}
	if c.CurrentDir == nil || other.CurrentDir == nil {
		return c.CurrentDir == nil && other.CurrentDir == nil
	}
	return *c.CurrentDir == *other.CurrentDir
}

// Dir returns a pointer to dir, for use as [Command.CurrentDir].
func Dir(dir string) *string {
	return &dir
}

// LogicalKey returns the logical key of c.
func (c Command) LogicalKey() Key {
	return Key{Executable: c.Executable, Args: c.Args}
}

// Key derives and encodes the key of c.
func (c Command) Key() (storage.EncodedKey[Command], error) {
	return storage.Key(Keys, c)
}

// Encode encodes c as a stored value.
func (c Command) Encode() ([]byte, error) {
	return Values.EncodeValue(c)
}

// Decode decodes a stored value into a command.
func Decode(data []byte) (Command, error) {
	return Values.DecodeValue(data)
}

// DecodeKey decodes an encoded key into a logical key.
func DecodeKey(key storage.EncodedKey[Command]) (Key, error) {
	return Keys.DecodeKey(key)
}

func (c Command) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", c.Executable)
	for _, arg := range c.Args {
		fmt.Fprintf(&b, " %q", arg)
	}
	if c.CurrentDir != nil {
		fmt.Fprintf(&b, " (in %q)", *c.CurrentDir)
	}
	return b.String()
}

var (
	// Keys is the key codec for commands.
	Keys = KeyCodec{}

	// Values is the value codec for commands.
	Values = ValueCodec{}
)

// Store is a store of commands.
type Store = storage.Store[Command, Key]

// NewStore creates a command store on top of engine.
func NewStore(engine storage.Engine, opts ...storage.Option) *Store {
	return storage.New(engine, Keys, Values, opts...)
}

// Range returns read options bounding an iteration to the commands of one
// executable.
func Range(executable uint8) *storage.ReadOptions {
	opts := &storage.ReadOptions{LowerBound: []byte{executable}}
	if executable < 0xff {
		opts.UpperBound = []byte{executable + 1}
	}
	return opts
}
