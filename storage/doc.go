// Package storage provides a typed access layer over an ordered, byte-keyed
// storage engine. Records are mapped to keys with a [KeyCodec] and to values
// with a [ValueCodec], and a [Store] performs put, get, delete and ordered
// iteration against an [Engine].
//
// Keys are carried as [EncodedKey], a byte string tagged at compile time with
// the record type it belongs to, so a key produced for one record type cannot
// be used against a store of another. The tag has no runtime representation
// and nothing of it reaches the engine.
//
// A [pebble]-backed engine is provided in the pebble subpackage, and an
// in-memory engine in the memory subpackage.
//
// [pebble]: https://github.com/cockroachdb/pebble
package storage
