/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package cache_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cupiddb/cupiddb/cache"
)

var _ = Describe("Store", func() {
	var store *cache.Store

	BeforeEach(func() {
		store = cache.NewStore(8, 4)
	})

	Describe("SetData/Get", func() {
		It("should round-trip a tagged value with no ttl", func() {
			store.SetData("k1", cache.TagAsBytes([]byte("hello")), 0)
			v, ok := store.Get("k1")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(cache.TagAsBytes([]byte("hello"))))

			_, hasDeadline := store.GetDeadline("k1")
			Expect(hasDeadline).To(BeFalse())
		})

		It("should set a deadline when ttl > 0", func() {
			store.SetData("k2", cache.TagAsBytes([]byte("v")), time.Minute)
			deadline, ok := store.GetDeadline("k2")
			Expect(ok).To(BeTrue())
			Expect(deadline).To(BeTemporally(">", time.Now()))
		})

		It("should overwrite an existing value and clear a stale deadline", func() {
			store.SetData("k3", cache.TagAsBytes([]byte("v1")), time.Minute)
			store.SetData("k3", cache.TagAsBytes([]byte("v2")), 0)

			v, _ := store.Get("k3")
			Expect(v).To(Equal(cache.TagAsBytes([]byte("v2"))))
			_, hasDeadline := store.GetDeadline("k3")
			Expect(hasDeadline).To(BeFalse())
		})
	})

	Describe("SetDataIfAbsent", func() {
		It("should insert when the key is absent", func() {
			added := store.SetDataIfAbsent("k4", cache.TagAsBytes([]byte("v")), 0)
			Expect(added).To(BeTrue())
			Expect(store.Contains("k4")).To(BeTrue())
		})

		It("should refuse to overwrite an existing key", func() {
			store.SetData("k5", cache.TagAsBytes([]byte("orig")), 0)
			added := store.SetDataIfAbsent("k5", cache.TagAsBytes([]byte("new")), 0)
			Expect(added).To(BeFalse())

			v, _ := store.Get("k5")
			Expect(v).To(Equal(cache.TagAsBytes([]byte("orig"))))
		})
	})

	Describe("Remove/RemoveMany", func() {
		It("should report whether the key was present", func() {
			store.SetData("k6", cache.TagAsBytes([]byte("v")), 0)
			Expect(store.Remove("k6")).To(BeTrue())
			Expect(store.Remove("k6")).To(BeFalse())
		})

		It("should count only the keys actually removed", func() {
			store.SetData("a", cache.TagAsBytes(nil), 0)
			store.SetData("b", cache.TagAsBytes(nil), 0)
			n := store.RemoveMany([]string{"a", "b", "missing"})
			Expect(n).To(Equal(2))
		})
	})

	Describe("Touch", func() {
		It("should fail when the key is absent", func() {
			Expect(store.Touch("missing", time.Minute)).To(BeFalse())
		})

		It("should update the deadline of an existing key", func() {
			store.SetData("k7", cache.TagAsBytes([]byte("v")), 0)
			Expect(store.Touch("k7", time.Minute)).To(BeTrue())
			_, ok := store.GetDeadline("k7")
			Expect(ok).To(BeTrue())
		})

		It("should clear the deadline when ttl is zero", func() {
			store.SetData("k8", cache.TagAsBytes([]byte("v")), time.Minute)
			Expect(store.Touch("k8", 0)).To(BeTrue())
			_, ok := store.GetDeadline("k8")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("GetTTL", func() {
		It("should report TTLKeyNotFound for an absent key", func() {
			result, _ := store.GetTTL("missing")
			Expect(result).To(Equal(cache.TTLKeyNotFound))
		})

		It("should report TTLNoDeadline for a key with no ttl", func() {
			store.SetData("k9", cache.TagAsBytes([]byte("v")), 0)
			result, _ := store.GetTTL("k9")
			Expect(result).To(Equal(cache.TTLNoDeadline))
		})

		It("should report the remaining duration for a live deadline", func() {
			store.SetData("k10", cache.TagAsBytes([]byte("v")), time.Minute)
			result, remaining := store.GetTTL("k10")
			Expect(result).To(Equal(cache.TTLRemaining))
			Expect(remaining).To(BeNumerically("<=", time.Minute))
			Expect(remaining).To(BeNumerically(">", 0))
		})

		It("should report TTLDeadlineInPast for an expired deadline not yet swept", func() {
			store.SetData("k11", cache.TagAsBytes([]byte("v")), time.Nanosecond)
			time.Sleep(time.Millisecond)
			result, _ := store.GetTTL("k11")
			Expect(result).To(Equal(cache.TTLDeadlineInPast))
		})
	})

	Describe("Clear", func() {
		It("should empty every shard", func() {
			for i := 0; i < 50; i++ {
				store.SetData(string(rune('a'+i)), cache.TagAsBytes([]byte("v")), 0)
			}
			Expect(store.Len()).To(BeNumerically(">", 0))
			store.Clear()
			Expect(store.Len()).To(Equal(0))
		})
	})

	Describe("Iter", func() {
		It("should visit every key across shards", func() {
			want := map[string]bool{"x": true, "y": true, "z": true}
			for k := range want {
				store.SetData(k, cache.TagAsBytes([]byte("v")), 0)
			}
			seen := map[string]bool{}
			store.Iter(func(key string, _ []byte) bool {
				seen[key] = true
				return true
			})
			Expect(seen).To(Equal(want))
		})

		It("should stop early when fn returns false", func() {
			for i := 0; i < 20; i++ {
				store.SetData(string(rune('a'+i)), cache.TagAsBytes([]byte("v")), 0)
			}
			count := 0
			store.Iter(func(_ string, _ []byte) bool {
				count++
				return count < 3
			})
			Expect(count).To(Equal(3))
		})
	})

	Describe("sharding", func() {
		It("should route a key to the same shard on set and get, with separate Store instances kept independent", func() {
			s1 := cache.NewStore(16, 4)
			s2 := cache.NewStore(16, 4)
			s1.SetData("some-key", cache.TagAsBytes([]byte("v1")), 0)
			s2.SetData("some-key", cache.TagAsBytes([]byte("v2")), 0)

			v1, _ := s1.Get("some-key")
			v2, _ := s2.Get("some-key")
			Expect(v1).To(Equal(cache.TagAsBytes([]byte("v1"))))
			Expect(v2).To(Equal(cache.TagAsBytes([]byte("v2"))))
		})
	})
})
