// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package protocol

import "fmt"

// EncodeFrame produces the contiguous wire bytes for f under the given
// framing variant. No partial writes are ever visible to the Port
// layer (spec.md §4.2): the caller gets one complete buffer or an error.
func EncodeFrame(framing Framing, f *Frame) ([]byte, error) {
	if len(f.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("protocol: payload too large: %d bytes (max %d)", len(f.Payload), MaxPayloadSize)
	}

	var body []byte
	var out []byte

	switch framing {
	case FramingPentair16:
		// Checksum covers header16 through the last payload byte, not
		// the 3-byte FF 00 FF preamble (spec.md §4.2).
		body = make([]byte, 0, 5+len(f.Payload))
		body = append(body, header16)
		body = append(body, 0x00) // preamble-flag, always zero on transmit
		body = append(body, f.Dest, f.Src, byte(f.Action), byte(len(f.Payload)))
		body = append(body, f.Payload...)
		cksum := CalculateChecksum(body)
		out = make([]byte, 0, 3+len(body)+2)
		out = append(out, 0xFF, 0x00, 0xFF)
		out = append(out, body...)
		out = append(out, byte(cksum>>8), byte(cksum))
		return out, nil

	case FramingPentair2:
		body = make([]byte, 0, 4+len(f.Payload))
		body = append(body, header2a, header2b)
		body = append(body, f.Dest, f.Src, byte(f.Action), byte(len(f.Payload)))
		body = append(body, f.Payload...)
		cksum := CalculateChecksum(body)
		out = make([]byte, 0, len(body)+2)
		out = append(out, body...)
		out = append(out, byte(cksum>>8), byte(cksum))
		return out, nil

	default:
		return nil, fmt.Errorf("protocol: unknown framing %v", framing)
	}
}
