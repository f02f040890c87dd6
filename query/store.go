/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package query

import "time"

// Store is the subset of cache.Store the query engine depends on, declared
// locally rather than imported -- keeps the dependency direction pointing
// from cache's callers inward, not from cache out to query.
type Store interface {
	Get(key string) ([]byte, bool)
	SetData(key string, value []byte, ttl time.Duration) bool
}
