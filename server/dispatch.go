// Package server implements CupidDB's request dispatcher, per-connection
// task, and process lifecycle: a one-function-per-request switch-on-opcode
// dispatcher, a connection task that runs the read-dispatch-write loop, and
// a daemon bootstrap that accepts connections, handles shutdown signals,
// and drains in-flight requests before exiting.
/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package server

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cupiddb/cupiddb/cache"
	"github.com/cupiddb/cupiddb/internal/gmatch"
	"github.com/cupiddb/cupiddb/internal/nlog"
	"github.com/cupiddb/cupiddb/query"
	"github.com/cupiddb/cupiddb/wire"
)

// SD flags byte: bit 0 is is_add (set-if-absent); bit 1 is is_batch,
// letting SD seed a record-batch value (tag A) for later GA queries
// without a dedicated "set arrow" opcode.
const (
	flagIsAdd   = 1 << 0
	flagIsBatch = 1 << 1
)

var requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "cupiddb_requests_total",
	Help: "Total dispatched requests by opcode and reply class.",
}, []string{"opcode", "reply_class"})

func init() {
	prometheus.MustRegister(requestsTotal)
}

// Dispatch takes an opcode and payload, mutates store as required, and
// returns the reply opcode/payload, plus whether the connection task must
// close the socket after writing the reply (true only for WP and CC).
func Dispatch(store *cache.Store, opcode string, payload []byte) (replyOpcode string, replyPayload []byte, closeAfter bool) {
	replyOpcode, replyPayload, closeAfter = dispatch(store, opcode, payload)
	requestsTotal.WithLabelValues(opcode, replyClass(replyOpcode)).Inc()
	return replyOpcode, replyPayload, closeAfter
}

func replyClass(opcode string) string {
	switch opcode {
	case wire.ReplyErr:
		return "error"
	case wire.ReplyNA:
		return "not_added"
	default:
		return "ok"
	}
}

func dispatch(store *cache.Store, opcode string, payload []byte) (string, []byte, bool) {
	switch opcode {
	case wire.OpSetData:
		return dispatchSetData(store, payload)
	case wire.OpIncrInt:
		return dispatchIncrInt(store, payload)
	case wire.OpIncrFloat:
		return dispatchIncrFloat(store, payload)
	case wire.OpGetArrow:
		res := query.Execute(store, payload)
		return res.Opcode, res.Payload, false
	case wire.OpGetData:
		return dispatchGetData(store, payload)
	case wire.OpDelete:
		return dispatchDelete(store, payload)
	case wire.OpDeleteMany:
		return dispatchDeleteMany(store, payload)
	case wire.OpTouch:
		return dispatchTouch(store, payload)
	case wire.OpGetTTL:
		return dispatchGetTTL(store, payload)
	case wire.OpHasKey:
		return dispatchHasKey(store, payload)
	case wire.OpListKeys:
		return dispatchListKeys(store, payload)
	case wire.OpFlushAll:
		store.Clear()
		return wire.ReplyFlush, nil, false
	case wire.OpWrongProto:
		return wire.ReplyErr, errReply(wire.ErrWrongProtocol), true
	case wire.OpConnClose:
		return wire.OpConnClose, nil, true
	default:
		nlog.Debugf("dispatch: unknown opcode %q", opcode)
		return wire.ReplyErr, errReply(wire.ErrUnknownOpcode), false
	}
}

func errReply(code uint16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, code)
	return buf
}

// dispatchSetData implements SD.
// payload: 8B cache_time_ms | 1B flags | 2B key_len | key | value.
func dispatchSetData(store *cache.Store, payload []byte) (string, []byte, bool) {
	if len(payload) < 11 {
		return wire.ReplyErr, errReply(wire.ErrWrongType), false
	}
	cacheTimeMs := binary.BigEndian.Uint64(payload[0:8])
	flags := payload[8]
	keyLen := binary.BigEndian.Uint16(payload[9:11])
	rest := payload[11:]
	if int(keyLen) > len(rest) {
		return wire.ReplyErr, errReply(wire.ErrWrongType), false
	}
	key := string(rest[:keyLen])
	value := rest[keyLen:]

	var tagged []byte
	if flags&flagIsBatch != 0 {
		tagged = cache.TagAsBatch(value)
	} else {
		tagged = cache.TagAsBytes(value)
	}

	ttl := msToDuration(cacheTimeMs)
	if flags&flagIsAdd != 0 {
		if added := store.SetDataIfAbsent(key, tagged, ttl); !added {
			return wire.ReplyNA, nil, false
		}
		return wire.ReplyOK, nil, false
	}
	store.SetData(key, tagged, ttl)
	return wire.ReplyOK, nil, false
}

func dispatchIncrInt(store *cache.Store, payload []byte) (string, []byte, bool) {
	if len(payload) < 8 {
		return wire.ReplyErr, errReply(wire.ErrWrongType), false
	}
	delta := int64(binary.BigEndian.Uint64(payload[0:8]))
	key := string(payload[8:])
	result, v := store.IncrInt(key, delta)
	if result == cache.CounterWrongType {
		return wire.ReplyErr, errReply(wire.ErrWrongType), false
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return wire.ReplyInt, buf, false
}

func dispatchIncrFloat(store *cache.Store, payload []byte) (string, []byte, bool) {
	if len(payload) < 8 {
		return wire.ReplyErr, errReply(wire.ErrWrongType), false
	}
	bits := binary.BigEndian.Uint64(payload[0:8])
	delta := float64frombits(bits)
	key := string(payload[8:])
	result, v := store.IncrFloat(key, delta)
	if result == cache.CounterWrongType {
		return wire.ReplyErr, errReply(wire.ErrWrongType), false
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, float64bits(v))
	return wire.ReplyFloat, buf, false
}

func dispatchGetData(store *cache.Store, payload []byte) (string, []byte, bool) {
	key := string(payload)
	v, ok := store.Get(key)
	if !ok {
		return wire.ReplyErr, errReply(wire.ErrKeyNotFound), false
	}
	if len(v) == 0 {
		return wire.ReplyErr, errReply(wire.ErrWrongType), false
	}
	switch v[0] {
	case cache.TagBatch:
		return wire.ReplyArrow, v[1:], false
	case cache.TagBytes:
		return wire.ReplyBytes, v[1:], false
	case cache.TagInt:
		if !cache.IsCounter(v, cache.TagInt) {
			return wire.ReplyErr, errReply(wire.ErrWrongType), false
		}
		return wire.ReplyInt, v[1:], false
	case cache.TagFloat:
		if !cache.IsCounter(v, cache.TagFloat) {
			return wire.ReplyErr, errReply(wire.ErrWrongType), false
		}
		return wire.ReplyFloat, v[1:], false
	default:
		return wire.ReplyErr, errReply(wire.ErrWrongType), false
	}
}

func dispatchDelete(store *cache.Store, payload []byte) (string, []byte, bool) {
	key := string(payload)
	if !store.Remove(key) {
		return wire.ReplyErr, errReply(wire.ErrKeyNotFound), false
	}
	return wire.ReplyOK, nil, false
}

func dispatchDeleteMany(store *cache.Store, payload []byte) (string, []byte, bool) {
	var keys []string
	for _, k := range bytes.Split(payload, []byte{0}) {
		if len(k) > 0 {
			keys = append(keys, string(k))
		}
	}
	n := store.RemoveMany(keys)
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(n))
	return wire.ReplyDel, buf, false
}

func dispatchTouch(store *cache.Store, payload []byte) (string, []byte, bool) {
	if len(payload) < 8 {
		return wire.ReplyErr, errReply(wire.ErrWrongType), false
	}
	cacheTimeMs := binary.BigEndian.Uint64(payload[0:8])
	key := string(payload[8:])
	if !store.Touch(key, msToDuration(cacheTimeMs)) {
		return wire.ReplyErr, errReply(wire.ErrKeyNotFound), false
	}
	return wire.ReplyOK, nil, false
}

func dispatchGetTTL(store *cache.Store, payload []byte) (string, []byte, bool) {
	key := string(payload)
	result, remaining := store.GetTTL(key)
	switch result {
	case cache.TTLKeyNotFound:
		return wire.ReplyErr, errReply(wire.ErrKeyNotFound), false
	case cache.TTLDeadlineInPast:
		return wire.ReplyErr, errReply(wire.ErrDeadlineInPast), false
	case cache.TTLNoDeadline:
		buf := make([]byte, 8)
		return wire.ReplyTTL, buf, false
	default: // TTLRemaining
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(remaining.Milliseconds()))
		return wire.ReplyTTL, buf, false
	}
}

func dispatchHasKey(store *cache.Store, payload []byte) (string, []byte, bool) {
	key := string(payload)
	if store.Contains(key) {
		return wire.ReplyOK, []byte{0x01}, false
	}
	return wire.ReplyOK, []byte{0x00}, false
}

// dispatchListKeys implements LS: keys that parse as a well-formed query
// object are treated as cached-query keys and excluded. A query object
// must also carry a non-empty Key field to count, so bare `{}`-shaped
// user keys aren't silently hidden.
func dispatchListKeys(store *cache.Store, payload []byte) (string, []byte, bool) {
	pattern := string(payload)
	var matched []string
	store.Iter(func(key string, _ []byte) bool {
		if looksLikeQueryKey(key) {
			return true
		}
		if gmatch.Match(pattern, key) {
			matched = append(matched, key)
		}
		return true
	})
	return wire.ReplyKeys, []byte(strings.Join(matched, "\x00")), false
}

func looksLikeQueryKey(key string) bool {
	q, err := query.Parse([]byte(key))
	return err == nil && q.Key != ""
}

func msToDuration(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func float64frombits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

func float64bits(f float64) uint64 {
	return math.Float64bits(f)
}
