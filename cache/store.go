// Package cache implements CupidDB's sharded concurrent key-value store: a
// key->tagged-bytes map paired with a key->deadline map, partitioned into
// independently-locked shards to reduce contention. Shard selection uses
// github.com/OneOfOne/xxhash rather than a cryptographic hash.
/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package cache

import (
	"sync"
	"time"

	"github.com/OneOfOne/xxhash"
)

type shard struct {
	mu        sync.RWMutex
	vals      map[string][]byte
	deadlines map[string]time.Time
}

// Store is a sharded concurrent map from string keys to tagged byte
// values, with a parallel per-shard deadline map. The pair (value,
// deadline) is not jointly atomic across a Get and a deadline check --
// callers that need atomicity for a compound operation (SD, TH, TL, II/IF)
// use the Store's own compound methods below, each of which takes exactly
// one shard lock.
type Store struct {
	shards []*shard
	mask   uint64
}

// NewStore creates a Store with numShards shards (rounded by the caller to
// a power of two) and initialCapacity pre-sized per-shard maps.
func NewStore(numShards, initialCapacity int) *Store {
	if numShards < 1 {
		numShards = 1
	}
	s := &Store{
		shards: make([]*shard, numShards),
		mask:   uint64(numShards - 1),
	}
	for i := range s.shards {
		s.shards[i] = &shard{
			vals:      make(map[string][]byte, initialCapacity),
			deadlines: make(map[string]time.Time, initialCapacity),
		}
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	h := xxhash.Checksum64([]byte(key))
	return s.shards[h&s.mask]
}

// Insert sets key's value unconditionally and clears any existing
// deadline. Callers that need to set a deadline atomically with the insert
// should use SetData instead.
func (s *Store) Insert(key string, value []byte) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.vals[key] = value
	delete(sh.deadlines, key)
	sh.mu.Unlock()
}

// SetData implements the SD opcode's is_add=0 contract: the value is
// installed unconditionally and the deadline is set (ttl > 0) or cleared
// (ttl == 0). It always returns true; SetDataIfAbsent is the is_add=1
// variant that can refuse.
func (s *Store) SetData(key string, value []byte, ttl time.Duration) (added bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.vals[key] = value
	if ttl > 0 {
		sh.deadlines[key] = time.Now().Add(ttl)
	} else {
		delete(sh.deadlines, key)
	}
	return true
}

// SetDataIfAbsent is SetData's is_add=1 variant: it mutates nothing and
// returns false if key is already present.
func (s *Store) SetDataIfAbsent(key string, value []byte, ttl time.Duration) (added bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, exists := sh.vals[key]; exists {
		return false
	}
	sh.vals[key] = value
	if ttl > 0 {
		sh.deadlines[key] = time.Now().Add(ttl)
	}
	return true
}

// Get returns key's current tagged value.
func (s *Store) Get(key string) ([]byte, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	v, ok := sh.vals[key]
	return v, ok
}

// Remove deletes key's value and deadline, reporting whether the key was
// present.
func (s *Store) Remove(key string) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.vals[key]
	delete(sh.vals, key)
	delete(sh.deadlines, key)
	return ok
}

// RemoveMany removes each key's value and deadline, returning the count of
// keys that were actually present.
func (s *Store) RemoveMany(keys []string) int {
	removed := 0
	for _, k := range keys {
		if s.Remove(k) {
			removed++
		}
	}
	return removed
}

// Contains reports whether key has a value, regardless of deadline state.
func (s *Store) Contains(key string) bool {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	_, ok := sh.vals[key]
	return ok
}

// Clear empties every shard's value and deadline maps.
func (s *Store) Clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.vals = make(map[string][]byte, len(sh.vals))
		sh.deadlines = make(map[string]time.Time, len(sh.deadlines))
		sh.mu.Unlock()
	}
}

// Len returns the approximate total entry count across all shards.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.vals)
		sh.mu.RUnlock()
	}
	return n
}

// Iter walks a best-effort, per-shard-consistent snapshot of all keys and
// values, calling fn for each. fn returning false stops the walk early.
// Concurrent mutation during the walk is tolerated: each shard is
// snapshotted independently while its lock is held.
func (s *Store) Iter(fn func(key string, value []byte) bool) {
	for _, sh := range s.shards {
		sh.mu.RLock()
		snap := make(map[string][]byte, len(sh.vals))
		for k, v := range sh.vals {
			snap[k] = v
		}
		sh.mu.RUnlock()
		for k, v := range snap {
			if !fn(k, v) {
				return
			}
		}
	}
}

// SetDeadline sets key's deadline. A key need not already have a value for
// this to take effect (mirrors the independence of the two maps); callers
// that require "only if key exists" use Touch instead.
func (s *Store) SetDeadline(key string, deadline time.Time) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.deadlines[key] = deadline
	sh.mu.Unlock()
}

// RemoveDeadline clears any deadline on key, leaving its value untouched.
func (s *Store) RemoveDeadline(key string) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	delete(sh.deadlines, key)
	sh.mu.Unlock()
}

// GetDeadline returns key's current deadline, if any.
func (s *Store) GetDeadline(key string) (time.Time, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	d, ok := sh.deadlines[key]
	return d, ok
}

// Touch implements the TH opcode: if key is absent, found is false and
// nothing changes. Otherwise the deadline is set (ttl > 0) or cleared
// (ttl == 0).
func (s *Store) Touch(key string, ttl time.Duration) (found bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.vals[key]; !ok {
		return false
	}
	if ttl > 0 {
		sh.deadlines[key] = time.Now().Add(ttl)
	} else {
		delete(sh.deadlines, key)
	}
	return true
}

// TTLResult is the outcome of a TL request against a single key.
type TTLResult int

const (
	TTLKeyNotFound    TTLResult = iota // ER code 2
	TTLDeadlineInPast                  // ER code 0
	TTLNoDeadline                      // TL 0
	TTLRemaining                       // TL <remaining ms>
)

// GetTTL implements the TL opcode's atomic read of (exists, deadline).
func (s *Store) GetTTL(key string) (TTLResult, time.Duration) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if _, ok := sh.vals[key]; !ok {
		return TTLKeyNotFound, 0
	}
	deadline, ok := sh.deadlines[key]
	if !ok {
		return TTLNoDeadline, 0
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return TTLDeadlineInPast, 0
	}
	return TTLRemaining, remaining
}

// IterDeadlines walks a best-effort snapshot of every (key, deadline) pair
// across all shards, calling fn for each. Used by the Expirer.
func (s *Store) IterDeadlines(fn func(key string, deadline time.Time) bool) {
	for _, sh := range s.shards {
		sh.mu.RLock()
		snap := make(map[string]time.Time, len(sh.deadlines))
		for k, d := range sh.deadlines {
			snap[k] = d
		}
		sh.mu.RUnlock()
		for k, d := range snap {
			if !fn(k, d) {
				return
			}
		}
	}
}
