// Package command defines Command, the reference record type of kvorm, and
// the codecs that map it onto a [storage.Store].
//
// # Key format
//
// The logical key of a command is its executable discriminant and its
// arguments. Keys are encoded as
//
//	executable (1 byte)
//	argument count (uint32, big-endian)
//	for each argument: length (uint32, big-endian), UTF-8 bytes
//
// The encoding is order-preserving for a documented order: commands sort by
// executable, then by number of arguments, then argument by argument, shorter
// arguments first and equal-length arguments bytewise. All commands of one
// executable are therefore contiguous, and [Range] bounds a scan over them.
// Arguments of different lengths do not sort lexicographically.
//
// # Value format
//
// Values start with a format version byte, currently 1, followed by the
// executable, the arguments as minimal unsigned varints of count and length,
// and the optional current directory as a presence byte and, if present, a
// varint length and its bytes. Decoding rejects unknown versions, truncated
// input, trailing bytes and invalid UTF-8.
package command
