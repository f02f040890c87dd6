/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package query

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// project keeps only the requested columns (all of them, in original
// schema order, if columns is empty), applying mask to each kept column,
// and reassembling a schema that preserves the original metadata.
func project(rec arrow.Record, schema *arrow.Schema, columns []string, mask []bool) (arrow.Record, error) {
	mem := memory.NewGoAllocator()
	want := func(name string) bool {
		if len(columns) == 0 {
			return true
		}
		for _, c := range columns {
			if c == name {
				return true
			}
		}
		return false
	}

	rows := 0
	for _, keep := range mask {
		if keep {
			rows++
		}
	}

	var fields []arrow.Field
	var cols []arrow.Array
	for i, f := range schema.Fields() {
		if !want(f.Name) {
			continue
		}
		filtered, err := filterColumn(rec.Column(i), mask, mem)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		fields = append(fields, f)
		cols = append(cols, filtered)
	}
	md := schema.Metadata()
	newSchema := arrow.NewSchema(fields, &md)
	return array.NewRecord(newSchema, cols, int64(rows)), nil
}

// filterColumn rebuilds col keeping only the rows where mask is true. The
// type switch below covers the column types the filter stage can also
// compare against; any other Arrow type (Decimal128, List, Struct, ...)
// still needs to come out the other side when it's merely along for the
// ride in a projection, so it falls back to filterColumnGeneric instead of
// failing the whole query over a column no clause ever touched.
func filterColumn(col arrow.Array, mask []bool, mem memory.Allocator) (arrow.Array, error) {
	switch arr := col.(type) {
	case *array.Int8:
		b := array.NewInt8Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Int16:
		b := array.NewInt16Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Int32:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Uint8:
		b := array.NewUint8Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Uint16:
		b := array.NewUint16Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Uint32:
		b := array.NewUint32Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Uint64:
		b := array.NewUint64Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Float32:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Boolean:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.String:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Date32:
		b := array.NewDate32Builder(mem)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	case *array.Timestamp:
		dt, _ := arr.DataType().(*arrow.TimestampType)
		b := array.NewTimestampBuilder(mem, dt)
		defer b.Release()
		for i, keep := range mask {
			if !keep {
				continue
			}
			appendOrNull(b, arr.IsNull(i), func() { b.Append(arr.Value(i)) })
		}
		return b.NewArray(), nil
	default:
		return filterColumnGeneric(col, mask, mem)
	}
}

// filterColumnGeneric keeps rows where mask is true for a column whose
// Arrow type has no dedicated builder case above. It slices out each kept
// row individually (a zero-copy view into col) and concatenates the
// slices back into one array, which works for any array.Array
// implementation since both operations are type-agnostic.
func filterColumnGeneric(col arrow.Array, mask []bool, mem memory.Allocator) (arrow.Array, error) {
	var kept []arrow.Array
	defer func() {
		for _, a := range kept {
			a.Release()
		}
	}()
	for i, keep := range mask {
		if !keep {
			continue
		}
		kept = append(kept, array.NewSlice(col, int64(i), int64(i+1)))
	}
	if len(kept) == 0 {
		return array.NewSlice(col, 0, 0), nil
	}
	return array.Concatenate(kept, mem)
}

// appendOrNull is shared across every builder type's filterColumn case:
// Arrow builders all implement AppendNull via array.Builder, so the null
// branch doesn't need a type switch of its own.
func appendOrNull(b array.Builder, isNull bool, appendValue func()) {
	if isNull {
		b.AppendNull()
		return
	}
	appendValue()
}
