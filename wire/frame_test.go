/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package wire_test

import (
	"bytes"
	"crypto/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/cupiddb/cupiddb/wire"
)

var _ = Describe("Frame", func() {
	Describe("WriteFrame/ReadFrame round trip", func() {
		runRoundTrip := func(opcode string, size int) {
			payload := make([]byte, size)
			_, err := rand.Read(payload)
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(wire.WriteFrame(&buf, opcode, payload)).To(Succeed())

			gotOpcode, gotPayload, err := wire.ReadFrame(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(gotOpcode).To(Equal(opcode))
			if size == 0 {
				Expect(gotPayload).To(BeEmpty())
			} else {
				Expect(gotPayload).To(Equal(payload))
			}
		}

		DescribeTable(
			"request and reply opcodes round-trip across a range of payload sizes",
			runRoundTrip,
			Entry("SD, empty payload", "SD", 0),
			Entry("SD, single byte", "SD", 1),
			Entry("GD, exactly one header's worth", "GD", 11),
			Entry("GA, 4KiB", "GA", 4096),
			Entry("OK, 1MiB", "OK", 1<<20),
			Entry("ER, single byte", "ER", 1),
		)
	})

	Describe("ReadFrame error handling", func() {
		It("should return OpConnClose when the stream ends before a full header", func() {
			var buf bytes.Buffer
			buf.Write([]byte{wire.Version, 'S'}) // truncated header
			opcode, payload, err := wire.ReadFrame(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(opcode).To(Equal(wire.OpConnClose))
			Expect(payload).To(BeNil())
		})

		It("should return OpConnClose on an empty stream", func() {
			var buf bytes.Buffer
			opcode, _, err := wire.ReadFrame(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(opcode).To(Equal(wire.OpConnClose))
		})

		It("should return OpWrongProto when the version byte mismatches", func() {
			var buf bytes.Buffer
			hdr := make([]byte, 11)
			hdr[0] = 'X' // not wire.Version
			buf.Write(hdr)
			opcode, payload, err := wire.ReadFrame(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(opcode).To(Equal(wire.OpWrongProto))
			Expect(payload).To(BeNil())
		})

		It("should return OpConnClose when the payload is truncated", func() {
			var buf bytes.Buffer
			Expect(wire.WriteFrame(&buf, "GD", []byte("hello world"))).To(Succeed())
			truncated := buf.Bytes()[:len(buf.Bytes())-3]
			opcode, _, err := wire.ReadFrame(bytes.NewReader(truncated))
			Expect(err).NotTo(HaveOccurred())
			Expect(opcode).To(Equal(wire.OpConnClose))
		})
	})

	Describe("WriteFrame", func() {
		It("should panic on a malformed opcode", func() {
			var buf bytes.Buffer
			Expect(func() { _ = wire.WriteFrame(&buf, "X", nil) }).To(Panic())
		})
	})
})
