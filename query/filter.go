/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package query

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// buildMask returns an all-true mask when there are no clauses, otherwise
// the AND/OR reduction of each recognized clause's per-row comparison. A
// clause whose column is missing or whose runtime type isn't one of the
// supported types is skipped; if every clause is skipped, the mask is
// all-true.
func buildMask(rec arrow.Record, schema *arrow.Schema, logic string, clauses []Clause) []bool {
	n := int(rec.NumRows())
	mask := make([]bool, n)
	applied := 0
	for _, c := range clauses {
		colMask, ok := clauseMask(rec, schema, c, n)
		if !ok {
			continue
		}
		applied++
		switch {
		case applied == 1:
			copy(mask, colMask)
		case logic == FilterOr:
			for i := range mask {
				mask[i] = mask[i] || colMask[i]
			}
		default: // AND is the default combining logic
			for i := range mask {
				mask[i] = mask[i] && colMask[i]
			}
		}
	}
	if applied == 0 {
		for i := range mask {
			mask[i] = true
		}
	}
	return mask
}

func fieldIndex(schema *arrow.Schema, name string) int {
	for i, f := range schema.Fields() {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// clauseMask dispatches on the column's runtime Arrow type; the
// client-supplied data_type tag is advisory only.
func clauseMask(rec arrow.Record, schema *arrow.Schema, c Clause, n int) ([]bool, bool) {
	idx := fieldIndex(schema, c.Col)
	if idx < 0 {
		return nil, false
	}
	mask := make([]bool, n)
	var ok bool
	switch arr := rec.Column(idx).(type) {
	case *array.Int8:
		ok = intMask(n, arr.IsNull, func(i int) int64 { return int64(arr.Value(i)) }, c.ValueInt, c.FilterType, mask)
	case *array.Int16:
		ok = intMask(n, arr.IsNull, func(i int) int64 { return int64(arr.Value(i)) }, c.ValueInt, c.FilterType, mask)
	case *array.Int32:
		ok = intMask(n, arr.IsNull, func(i int) int64 { return int64(arr.Value(i)) }, c.ValueInt, c.FilterType, mask)
	case *array.Int64:
		ok = intMask(n, arr.IsNull, func(i int) int64 { return arr.Value(i) }, c.ValueInt, c.FilterType, mask)
	case *array.Uint8:
		ok = intMask(n, arr.IsNull, func(i int) int64 { return int64(arr.Value(i)) }, c.ValueInt, c.FilterType, mask)
	case *array.Uint16:
		ok = intMask(n, arr.IsNull, func(i int) int64 { return int64(arr.Value(i)) }, c.ValueInt, c.FilterType, mask)
	case *array.Uint32:
		ok = intMask(n, arr.IsNull, func(i int) int64 { return int64(arr.Value(i)) }, c.ValueInt, c.FilterType, mask)
	case *array.Uint64:
		ok = intMask(n, arr.IsNull, func(i int) int64 { return int64(arr.Value(i)) }, c.ValueInt, c.FilterType, mask)
	case *array.Float32:
		ok = floatMask(n, arr.IsNull, func(i int) float64 { return float64(arr.Value(i)) }, c.ValueFlt, c.FilterType, mask)
	case *array.Float64:
		ok = floatMask(n, arr.IsNull, func(i int) float64 { return arr.Value(i) }, c.ValueFlt, c.FilterType, mask)
	case *array.Boolean:
		ok = boolMask(n, arr.IsNull, arr.Value, c.ValueBol, c.FilterType, mask)
	case *array.String:
		ok = stringMask(n, arr.IsNull, arr.Value, c.ValueStr, c.FilterType, mask)
	case *array.Date32:
		ok = intMask(n, arr.IsNull, func(i int) int64 { return int64(arr.Value(i)) }, c.ValueInt, c.FilterType, mask)
	case *array.Timestamp:
		ok = intMask(n, arr.IsNull, func(i int) int64 { return int64(arr.Value(i)) }, c.ValueInt, c.FilterType, mask)
	default:
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return mask, true
}

func applyOp(cmp int, op string) bool {
	switch op {
	case OpGT:
		return cmp > 0
	case OpGTE:
		return cmp >= 0
	case OpLT:
		return cmp < 0
	case OpLTE:
		return cmp <= 0
	case OpEQ:
		return cmp == 0
	default: // neq, and anything unrecognized
		return cmp != 0
	}
}

func intMask(n int, isNull func(int) bool, value func(int) int64, want *int64, op string, mask []bool) bool {
	if want == nil {
		return false
	}
	for i := 0; i < n; i++ {
		if isNull(i) {
			mask[i] = false
			continue
		}
		v := value(i)
		mask[i] = applyOp(cmpInt64(v, *want), op)
	}
	return true
}

func floatMask(n int, isNull func(int) bool, value func(int) float64, want *float64, op string, mask []bool) bool {
	if want == nil {
		return false
	}
	for i := 0; i < n; i++ {
		if isNull(i) {
			mask[i] = false
			continue
		}
		v := value(i)
		mask[i] = applyOp(cmpFloat64(v, *want), op)
	}
	return true
}

func boolMask(n int, isNull func(int) bool, value func(int) bool, want *bool, op string, mask []bool) bool {
	if want == nil {
		return false
	}
	for i := 0; i < n; i++ {
		if isNull(i) {
			mask[i] = false
			continue
		}
		v := value(i)
		mask[i] = applyOp(cmpBool(v, *want), op)
	}
	return true
}

func stringMask(n int, isNull func(int) bool, value func(int) string, want *string, op string, mask []bool) bool {
	if want == nil {
		return false
	}
	for i := 0; i < n; i++ {
		if isNull(i) {
			mask[i] = false
			continue
		}
		mask[i] = applyOp(strings.Compare(value(i), *want), op)
	}
	return true
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a && b:
		return -1
	default:
		return 1
	}
}
