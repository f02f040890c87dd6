// Package wire implements CupidDB's length-framed binary protocol: a fixed
// 11-byte header (version, two-byte opcode, 8-byte big-endian payload
// length) followed by the payload.
/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package wire

import (
	"encoding/binary"
	"io"
)

const (
	// Version is the single protocol version byte, literal ASCII 'B'.
	Version byte = 'B'

	headerSize = 11 // 1 (version) + 2 (opcode) + 8 (length)

	// OpConnClose and OpWrongProto are synthesized locally by ReadFrame;
	// they never appear on the wire as a request opcode.
	OpConnClose  = "CC"
	OpWrongProto = "WP"
)

// ReadFrame reads one frame from r. On any read error before the 11-byte
// header is fully read, it returns the synthetic opcode OpConnClose with an
// empty payload and a nil error -- the caller is expected to treat this as
// "the connection is gone" rather than a protocol fault. If the version
// byte mismatches, it returns OpWrongProto with an empty payload (payload
// bytes on the wire, if any, are not consumed further; the caller closes
// the connection after replying).
func ReadFrame(r io.Reader) (opcode string, payload []byte, err error) {
	var hdr [headerSize]byte
	if _, ioErr := io.ReadFull(r, hdr[:]); ioErr != nil {
		return OpConnClose, nil, nil
	}
	if hdr[0] != Version {
		return OpWrongProto, nil, nil
	}
	opcode = string(hdr[1:3])
	n := binary.BigEndian.Uint64(hdr[3:11])
	if n == 0 {
		return opcode, []byte{}, nil
	}
	payload = make([]byte, n)
	if _, ioErr := io.ReadFull(r, payload); ioErr != nil {
		return OpConnClose, nil, nil
	}
	return opcode, payload, nil
}

// WriteFrame writes one frame to w. Write failures at this layer are not
// surfaced as protocol errors to the caller -- the connection is assumed
// broken and the caller proceeds straight to teardown -- but the error is
// still returned so the connection task can skip further writes on the
// same (now-dead) socket instead of attempting a second doomed write.
func WriteFrame(w io.Writer, opcode string, payload []byte) error {
	if len(opcode) != 2 {
		panic("wire: opcode must be exactly two bytes: " + opcode)
	}
	var hdr [headerSize]byte
	hdr[0] = Version
	hdr[1] = opcode[0]
	hdr[2] = opcode[1]
	binary.BigEndian.PutUint64(hdr[3:11], uint64(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}
