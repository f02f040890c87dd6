// Package xatomic re-exports the counter type CupidDB uses for shared
// mutable state (currently: the active log level) under a name that reads
// naturally at call sites.
/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package xatomic

import "go.uber.org/atomic"

type Int32 = atomic.Int32

func NewInt32(v int32) *Int32 { return atomic.NewInt32(v) }
