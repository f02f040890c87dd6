/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package wire

// Request and reply opcodes: flat two-ASCII-character wire codes.
const (
	OpSetData    = "SD"
	OpIncrInt    = "II"
	OpIncrFloat  = "IF"
	OpGetArrow   = "GA"
	OpGetData    = "GD"
	OpDelete     = "DL"
	OpDeleteMany = "DM"
	OpTouch      = "TH"
	OpGetTTL     = "TL"
	OpHasKey     = "HK"
	OpListKeys   = "LS"
	OpFlushAll   = "FU"

	ReplyOK    = "OK"
	ReplyInt   = "IN"
	ReplyFloat = "FL"
	ReplyArrow = "AR"
	ReplyBytes = "BY"
	ReplyTTL   = "TL"
	ReplyKeys  = "KY"
	ReplyDel   = "DM"
	ReplyFlush = "FU"
	ReplyErr   = "ER"
	ReplyNA    = "NA"
)

// Error codes carried in the 2-byte big-endian payload of an ER reply.
const (
	ErrDeadlineInPast uint16 = 0
	ErrUnknownOpcode  uint16 = 1
	ErrKeyNotFound    uint16 = 2
	ErrMalformedQuery uint16 = 3
	ErrMalformedBatch uint16 = 4
	ErrWrongType      uint16 = 5
	ErrWrongProtocol  uint16 = 6
)
