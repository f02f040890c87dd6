// Package gmatch exposes the glob predicate the LS opcode needs, using
// github.com/tidwall/match rather than re-implementing glob syntax by hand.
/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package gmatch

import "github.com/tidwall/match"

// Match reports whether key satisfies glob pattern. An empty pattern
// matches everything.
func Match(pattern, key string) bool {
	if pattern == "" {
		return true
	}
	return match.Match(key, pattern)
}
