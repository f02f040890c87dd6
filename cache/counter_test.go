/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package cache_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cupiddb/cupiddb/cache"
)

var _ = Describe("Counters", func() {
	var store *cache.Store

	BeforeEach(func() {
		store = cache.NewStore(8, 4)
	})

	Describe("IncrInt", func() {
		It("should create a fresh counter at the delta value", func() {
			result, v := store.IncrInt("n", 5)
			Expect(result).To(Equal(cache.CounterCreated))
			Expect(v).To(Equal(int64(5)))
		})

		It("should accumulate across calls", func() {
			store.IncrInt("n", 5)
			result, v := store.IncrInt("n", -2)
			Expect(result).To(Equal(cache.CounterUpdated))
			Expect(v).To(Equal(int64(3)))
		})

		It("should wrap on int64 overflow", func() {
			store.SetData("wrap", cache.NewIntCounter(9223372036854775807), 0)
			_, v := store.IncrInt("wrap", 1)
			Expect(v).To(Equal(int64(-9223372036854775808)))
		})

		It("should reject a key holding a non-counter value", func() {
			store.SetData("bytes-key", cache.TagAsBytes([]byte("not a counter")), 0)
			result, _ := store.IncrInt("bytes-key", 1)
			Expect(result).To(Equal(cache.CounterWrongType))
		})

		It("should reject a key holding the other counter type", func() {
			store.SetData("float-key", cache.NewFloatCounter(1.5), 0)
			result, _ := store.IncrInt("float-key", 1)
			Expect(result).To(Equal(cache.CounterWrongType))
		})
	})

	Describe("IncrFloat", func() {
		It("should create a fresh counter at the delta value", func() {
			result, v := store.IncrFloat("f", 1.5)
			Expect(result).To(Equal(cache.CounterCreated))
			Expect(v).To(Equal(1.5))
		})

		It("should accumulate across calls", func() {
			store.IncrFloat("f", 1.5)
			result, v := store.IncrFloat("f", 2.25)
			Expect(result).To(Equal(cache.CounterUpdated))
			Expect(v).To(Equal(3.75))
		})

		It("should reject a key holding a non-counter value", func() {
			store.SetData("bytes-key2", cache.TagAsBytes([]byte("x")), 0)
			result, _ := store.IncrFloat("bytes-key2", 1)
			Expect(result).To(Equal(cache.CounterWrongType))
		})
	})

	Describe("tag helpers", func() {
		It("should round-trip an int counter through IsCounter/IntCounterValue", func() {
			v := cache.NewIntCounter(42)
			Expect(cache.IsCounter(v, cache.TagInt)).To(BeTrue())
			Expect(cache.IntCounterValue(v)).To(Equal(int64(42)))
		})

		It("should round-trip a float counter through IsCounter/FloatCounterValue", func() {
			v := cache.NewFloatCounter(3.14)
			Expect(cache.IsCounter(v, cache.TagFloat)).To(BeTrue())
			Expect(cache.FloatCounterValue(v)).To(Equal(3.14))
		})

		It("should not mistake one counter tag for another", func() {
			v := cache.NewIntCounter(1)
			Expect(cache.IsCounter(v, cache.TagFloat)).To(BeFalse())
		})
	})
})
