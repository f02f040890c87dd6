/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package hk_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cupiddb/cupiddb/cache/hk"
)

// fakeStore is a minimal hk.Store, letting the expirer's sweep timing be
// exercised without pulling in the concrete cache.Store shard machinery.
type fakeStore struct {
	mu        sync.Mutex
	deadlines map[string]time.Time
	removed   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{deadlines: map[string]time.Time{}}
}

func (f *fakeStore) set(key string, deadline time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadlines[key] = deadline
}

func (f *fakeStore) IterDeadlines(fn func(key string, deadline time.Time) bool) {
	f.mu.Lock()
	snap := make(map[string]time.Time, len(f.deadlines))
	for k, d := range f.deadlines {
		snap[k] = d
	}
	f.mu.Unlock()
	for k, d := range snap {
		if !fn(k, d) {
			return
		}
	}
}

func (f *fakeStore) Remove(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.deadlines[key]; !ok {
		return false
	}
	delete(f.deadlines, key)
	f.removed = append(f.removed, key)
	return true
}

func (f *fakeStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deadlines)
}

var _ = Describe("Expirer", func() {
	It("should remove a key once its deadline is in the past", func() {
		store := newFakeStore()
		store.set("expired", time.Now().Add(-time.Second))
		store.set("alive", time.Now().Add(time.Hour))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hk.New(store).Run(ctx)

		Eventually(func() bool {
			store.mu.Lock()
			defer store.mu.Unlock()
			_, ok := store.deadlines["expired"]
			return len(store.removed) == 1 && !ok
		}, time.Second, 10*time.Millisecond).Should(BeTrue())

		store.mu.Lock()
		_, stillAlive := store.deadlines["alive"]
		store.mu.Unlock()
		Expect(stillAlive).To(BeTrue())
	})

	It("should stop sweeping once its context is cancelled", func() {
		store := newFakeStore()
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			hk.New(store).Run(ctx)
			close(done)
		}()
		cancel()

		Eventually(done, time.Second).Should(BeClosed())
	})

	It("should cap a single sweep at hk.Batch keys", func() {
		store := newFakeStore()
		for i := 0; i < hk.Batch*2; i++ {
			store.set(string(rune('a'+i%26))+string(rune('0'+i/26)), time.Now().Add(-time.Minute))
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go hk.New(store).Run(ctx)

		// After the first cycle, at most Batch keys should have been
		// removed -- the remainder catch up on subsequent cycles.
		Consistently(func() int {
			store.mu.Lock()
			defer store.mu.Unlock()
			return len(store.removed)
		}, 50*time.Millisecond, time.Millisecond).Should(BeNumerically("<=", hk.Batch))

		Eventually(func() int {
			store.mu.Lock()
			defer store.mu.Unlock()
			return len(store.removed)
		}, 2*time.Second, 10*time.Millisecond).Should(Equal(hk.Batch * 2))
	})
})
