/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package query

import (
	"bytes"
	"errors"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/cupiddb/cupiddb/cache"
	"github.com/cupiddb/cupiddb/internal/nlog"
	"github.com/cupiddb/cupiddb/wire"
)

// Result is a dispatcher-shaped (reply opcode, reply payload) pair, so
// server.Dispatch can hand a GA request straight to Execute without the
// query package needing to know anything about the wire.Frame type.
type Result struct {
	Opcode  string
	Payload []byte
}

func errResult(code uint16) Result {
	buf := make([]byte, 2)
	buf[0] = byte(code >> 8)
	buf[1] = byte(code)
	return Result{Opcode: wire.ReplyErr, Payload: buf}
}

// Execute implements the GA opcode end to end. payload is both the
// query's JSON encoding and its own memoization fingerprint.
func Execute(store Store, payload []byte) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			nlog.Errorf("query: panic recovered: %v", r)
			result = errResult(wire.ErrMalformedBatch)
		}
	}()

	// Step 1: memo hit.
	if cached, ok := store.Get(string(payload)); ok && len(cached) > 0 && cached[0] == cache.TagBatch {
		return Result{Opcode: wire.ReplyArrow, Payload: cached[1:]}
	}

	// Step 2: parse.
	q, err := Parse(payload)
	if err != nil {
		return errResult(wire.ErrMalformedQuery)
	}

	// Step 3: load source.
	raw, ok := store.Get(q.Key)
	if !ok {
		return errResult(wire.ErrKeyNotFound)
	}
	if len(raw) == 0 || raw[0] != cache.TagBatch {
		return errResult(wire.ErrMalformedBatch)
	}
	rec, schema, err := decodeBatch(raw[1:])
	if err != nil {
		return errResult(wire.ErrMalformedBatch)
	}
	defer rec.Release()

	// Step 4: filter mask.
	mask := buildMask(rec, schema, q.FilterLogic, q.Filter)

	// Step 5: projection.
	projected, err := project(rec, schema, q.Columns, mask)
	if err != nil {
		return errResult(wire.ErrMalformedBatch)
	}
	defer projected.Release()

	// Step 6: encode.
	encoded, err := encodeBatch(projected)
	if err != nil {
		return errResult(wire.ErrMalformedBatch)
	}
	encoded, err = compressPayload(encoded, q.CompressionType)
	if err != nil {
		return errResult(wire.ErrMalformedBatch)
	}

	// Step 7: memoize.
	if q.CacheTimeMs > 0 {
		store.SetData(string(payload), cache.TagAsBatch(encoded), q.CacheTime())
	}

	// Step 8: reply.
	return Result{Opcode: wire.ReplyArrow, Payload: encoded}
}

// decodeBatch reads exactly one record batch from an Arrow IPC stream.
// Any decode failure is reported to the caller as ER code 4.
func decodeBatch(data []byte) (arrow.Record, *arrow.Schema, error) {
	mem := memory.NewGoAllocator()
	r, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, nil, err
	}
	defer r.Release()

	if !r.Next() {
		if err := r.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, err
		}
		return nil, nil, errors.New("query: source batch contains no record batches")
	}
	rec := r.Record()
	rec.Retain()
	return rec, rec.Schema(), nil
}

// encodeBatch writes rec as a single-batch Arrow IPC stream with IPC
// alignment 64 and metadata V5 -- arrow-go's ipc.Writer defaults at this
// dependency pin. The requested compression codec, if any, is applied as
// an outer envelope around these bytes by compressPayload.
func encodeBatch(rec arrow.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf,
		ipc.WithAllocator(memory.NewGoAllocator()),
		ipc.WithSchema(rec.Schema()),
	)
	if err := w.Write(rec); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
