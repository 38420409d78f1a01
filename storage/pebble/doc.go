// Package pebble provides a [storage.Engine] backed by [pebble], the ordered
// LSM key-value store used by CockroachDB.
//
// [pebble]: https://github.com/cockroachdb/pebble
package pebble
