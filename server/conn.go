/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/cupiddb/cupiddb/cache"
	"github.com/cupiddb/cupiddb/internal/nlog"
	"github.com/cupiddb/cupiddb/wire"
)

// conn runs a single client connection's request/reply loop: read a
// frame, dispatch it, write the reply, repeat until the socket or the
// process tells it to stop.
type conn struct {
	nc    net.Conn
	store *cache.Store
}

func newConn(nc net.Conn, store *cache.Store) *conn {
	return &conn{nc: nc, store: store}
}

// serve runs until the client disconnects, sends a malformed version byte,
// or ctx is cancelled (graceful shutdown in progress). It never returns an
// error the caller needs to act on; everything recoverable is logged here.
func (c *conn) serve(ctx context.Context) {
	defer c.nc.Close()

	if tc, ok := c.nc.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}

	for {
		if ctx.Err() != nil {
			return
		}

		opcode, payload, err := wire.ReadFrame(c.nc)
		if err != nil {
			if !isClosedErr(err) {
				nlog.Debugf("server: read frame from %s: %v", c.nc.RemoteAddr(), err)
			}
			return
		}

		if opcode == wire.OpConnClose {
			return
		}

		replyOpcode, replyPayload, closeAfter := Dispatch(c.store, opcode, payload)

		if err := wire.WriteFrame(c.nc, replyOpcode, replyPayload); err != nil {
			if !isClosedErr(err) {
				nlog.Debugf("server: write frame to %s: %v", c.nc.RemoteAddr(), err)
			}
			return
		}

		if closeAfter {
			return
		}
	}
}

func isClosedErr(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return strings.Contains(netErr.Err.Error(), "closed")
	}
	return false
}
