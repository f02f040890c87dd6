// Package hk implements CupidDB's background expiration sweep: a single
// long-lived goroutine that scans the store's deadline map and evicts
// whatever has passed its deadline, re-arming its own next sleep each
// cycle.
/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package hk

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cupiddb/cupiddb/internal/nlog"
)

// Batch caps the number of expired keys removed per sweep cycle, bounding
// the tail latency a large simultaneous expiration can impose on
// concurrent store operations.
const Batch = 100

// cycleInterval is the target wall-clock spacing between sweep starts.
const cycleInterval = 250 * time.Millisecond

// metricsInterval is how often the sweeper emits its periodic metrics line.
const metricsInterval = 60 * time.Second

// Store is the subset of cache.Store the Expirer depends on; declared here
// (rather than importing package cache) to keep the dependency direction
// pointing from cache -> hk's caller, not hk -> cache -- hk only needs
// "something that can list deadlines and remove keys."
type Store interface {
	IterDeadlines(fn func(key string, deadline time.Time) bool)
	Remove(key string) bool
	Len() int
}

var (
	entriesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cupiddb_store_entries",
		Help: "Current total number of entries in the store.",
	})
	expiredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cupiddb_expired_total",
		Help: "Total number of entries evicted by the background expirer.",
	})
)

func init() {
	prometheus.MustRegister(entriesGauge, expiredCounter)
}

// Expirer runs the background expiration sweep.
type Expirer struct {
	store Store
}

// New returns an Expirer over store. Call Run to start sweeping.
func New(store Store) *Expirer {
	return &Expirer{store: store}
}

// Run sweeps until ctx is cancelled. Each cycle: collect up to Batch keys
// whose deadline is strictly in the past, remove each (value then
// deadline, atomically per key via Store.Remove), then sleep out the
// remainder of cycleInterval. Every metricsInterval it logs and publishes
// a metrics line.
func (e *Expirer) Run(ctx context.Context) {
	var (
		cleanedSinceEmit int
		lastEmit         = time.Now()
	)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		cleaned := e.sweepOnce(start)
		cleanedSinceEmit += cleaned

		if time.Since(lastEmit) >= metricsInterval {
			entriesGauge.Set(float64(e.store.Len()))
			nlog.Infof("hk: entries=%d cleaned_since_last=%d", e.store.Len(), cleanedSinceEmit)
			cleanedSinceEmit = 0
			lastEmit = time.Now()
		}

		elapsed := time.Since(start)
		if sleep := cycleInterval - elapsed; sleep > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(sleep):
			}
		}
	}
}

// sweepOnce collects up to Batch keys past their deadline as of `now` and
// removes them, returning the count actually cleaned.
func (e *Expirer) sweepOnce(now time.Time) int {
	expired := make([]string, 0, Batch)
	e.store.IterDeadlines(func(key string, deadline time.Time) bool {
		if deadline.Before(now) {
			expired = append(expired, key)
		}
		return len(expired) < Batch
	})
	cleaned := 0
	for _, key := range expired {
		if e.store.Remove(key) {
			cleaned++
			expiredCounter.Inc()
		}
	}
	return cleaned
}
