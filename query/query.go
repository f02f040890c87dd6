// Package query implements the GA opcode's column query engine: decode a
// stored Arrow record batch, project columns, apply a typed filter
// predicate, re-encode (optionally compressed), and memoize the result
// under the query's own JSON fingerprint. JSON parsing uses
// github.com/json-iterator/go over flat JSON-tagged structs.
/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package query

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Query is the JSON object carried as the GA opcode's payload. Its exact
// byte representation (as received on the wire) also serves as the
// memoization fingerprint -- the cache key under which a non-zero
// CacheTimeMs result is stored.
type Query struct {
	Key             string   `json:"key"`
	Columns         []string `json:"columns"`
	FilterLogic     string   `json:"filterlogic"`
	Filter          []Clause `json:"filter"`
	CacheTimeMs     uint64   `json:"cachetime"`
	CompressionType string   `json:"compression_type"`
}

// Clause is one filter predicate entry. Only the value field matching the
// column's actual runtime type is consulted; the others are nil/zero and
// ignored.
type Clause struct {
	Col        string   `json:"col"`
	FilterType string   `json:"filter_type"`
	DataType   string   `json:"data_type"`
	ValueInt   *int64   `json:"value_int"`
	ValueFlt   *float64 `json:"value_flt"`
	ValueBol   *bool    `json:"value_bol"`
	ValueStr   *string  `json:"value_str"`
}

const (
	FilterAnd = "AND"
	FilterOr  = "OR"
)

const (
	OpGT  = "gt"
	OpGTE = "gte"
	OpLT  = "lt"
	OpLTE = "lte"
	OpEQ  = "eq"
	OpNEQ = "neq"
)

// CacheTime converts CacheTimeMs to a time.Duration for Store.SetData.
func (q *Query) CacheTime() time.Duration {
	return time.Duration(q.CacheTimeMs) * time.Millisecond
}

// Parse decodes a GA payload into a Query. A malformed payload is the
// caller's ER code 3.
func Parse(payload []byte) (*Query, error) {
	var q Query
	if err := json.Unmarshal(payload, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
