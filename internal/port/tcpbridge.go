// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package port

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// TCPConfig is a network-bridged serial endpoint: host+port over TCP,
// either raw bytes or a length-framed wrapper (spec.md §4.1).
type TCPConfig struct {
	Host          string
	Port          int
	LengthFramed  bool
	DialTimeoutMs int
}

// TCPOpener dials a TCP-bridged serial peer.
func TCPOpener(cfg TCPConfig) Opener {
	return func(ctx context.Context) (Transport, error) {
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("port: dial %s: %w", addr, err)
		}
		if cfg.LengthFramed {
			return &lengthFramedConn{Conn: conn}, nil
		}
		return conn, nil
	}
}

// lengthFramedConn wraps a net.Conn whose peer prefixes every write
// with a big-endian uint16 byte count and expects the same on reads,
// unwrapping/rewrapping transparently so the rest of the Port layer
// only ever sees a flat byte stream.
type lengthFramedConn struct {
	net.Conn
	pending []byte
}

func (c *lengthFramedConn) Read(p []byte) (int, error) {
	for len(c.pending) == 0 {
		var hdr [2]byte
		if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
			return 0, err
		}
		n := binary.BigEndian.Uint16(hdr[:])
		if n == 0 {
			continue
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(c.Conn, buf); err != nil {
			return 0, err
		}
		c.pending = buf
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *lengthFramedConn) Write(p []byte) (int, error) {
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(p)))
	if _, err := c.Conn.Write(hdr[:]); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}
