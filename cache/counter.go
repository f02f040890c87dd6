/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package cache

import (
	"encoding/binary"
	"math"
)

// CounterResult distinguishes the three outcomes of an II/IF request: the
// key was absent and got created, the key existed and was a well-formed
// counter of the right tag, or it existed but was the wrong shape/tag.
type CounterResult int

const (
	CounterCreated CounterResult = iota
	CounterUpdated
	CounterWrongType
)

// IncrInt implements II: atomic read-modify-write of a tagged 9-byte i64
// counter, created fresh with wrapping semantics if absent.
func (s *Store) IncrInt(key string, delta int64) (CounterResult, int64) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	existing, ok := sh.vals[key]
	if !ok {
		v := delta
		sh.vals[key] = NewIntCounter(v)
		return CounterCreated, v
	}
	if !IsCounter(existing, TagInt) {
		return CounterWrongType, 0
	}
	cur := IntCounterValue(existing)
	next := cur + delta // wrapping i64 arithmetic
	buf := make([]byte, 9)
	buf[0] = TagInt
	binary.BigEndian.PutUint64(buf[1:], uint64(next))
	sh.vals[key] = buf
	return CounterUpdated, next
}

// IncrFloat implements IF: atomic read-modify-write of a tagged 9-byte
// f64 counter, created fresh with IEEE-754 semantics if absent.
func (s *Store) IncrFloat(key string, delta float64) (CounterResult, float64) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	existing, ok := sh.vals[key]
	if !ok {
		v := delta
		sh.vals[key] = NewFloatCounter(v)
		return CounterCreated, v
	}
	if !IsCounter(existing, TagFloat) {
		return CounterWrongType, 0
	}
	cur := FloatCounterValue(existing)
	next := cur + delta
	buf := make([]byte, 9)
	buf[0] = TagFloat
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(next))
	sh.vals[key] = buf
	return CounterUpdated, next
}
