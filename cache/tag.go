/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package cache

import (
	"encoding/binary"
	"math"
)

// Value type tags, the one-byte discriminator prefixing every stored
// value. Centralizing tag construction here keeps a single constructor per
// value kind -- no other package hand-writes a tag byte.
const (
	TagBatch   byte = 'A'
	TagBytes   byte = 'B'
	TagInt     byte = 'I'
	TagFloat   byte = 'F'
)

// TagAsBytes prefixes b with the opaque-bytes tag.
func TagAsBytes(b []byte) []byte {
	return tag(TagBytes, b)
}

// TagAsBatch prefixes b (an already-encoded Arrow IPC stream) with the
// record-batch tag. Used by the query engine's memoization path and by
// SD requests whose flag byte carries the is_batch bit.
func TagAsBatch(b []byte) []byte {
	return tag(TagBatch, b)
}

// NewIntCounter returns a freshly tagged 9-byte integer counter value.
func NewIntCounter(v int64) []byte {
	buf := make([]byte, 9)
	buf[0] = TagInt
	binary.BigEndian.PutUint64(buf[1:], uint64(v))
	return buf
}

// NewFloatCounter returns a freshly tagged 9-byte float counter value.
func NewFloatCounter(v float64) []byte {
	buf := make([]byte, 9)
	buf[0] = TagFloat
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(v))
	return buf
}

func tag(t byte, b []byte) []byte {
	out := make([]byte, len(b)+1)
	out[0] = t
	copy(out[1:], b)
	return out
}

// IsCounter reports whether tagged value v is a well-formed counter of the
// given tag (exactly 9 bytes, matching tag byte).
func IsCounter(v []byte, wantTag byte) bool {
	return len(v) == 9 && v[0] == wantTag
}

// IntCounterValue reads the 8-byte big-endian integer out of a tagged
// 9-byte counter value. Caller must have checked IsCounter first.
func IntCounterValue(v []byte) int64 {
	return int64(binary.BigEndian.Uint64(v[1:]))
}

// FloatCounterValue reads the 8-byte big-endian float out of a tagged
// 9-byte counter value. Caller must have checked IsCounter first.
func FloatCounterValue(v []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(v[1:]))
}
