// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package protocol

import (
	"fmt"
	"time"

	"github.com/poolautomation/poolcore/internal/poolerr"
)

type decoderState int

const (
	stateHunt decoderState = iota
	stateFlag              // Pentair-16 only
	stateDest
	stateSrc
	stateAction
	stateLength
	stateBody
	stateChecksumHi
	stateChecksumLo
)

// Decoder is the resumable byte-stream state machine described in
// spec.md §4.2: Hunt -> Header -> Length -> Body -> Checksum -> Emit|Reject.
// A single Decoder is owned by one Port and fed one byte at a time.
type Decoder struct {
	framing Framing
	preamble []byte

	state      decoderState
	huntBuf    []byte
	bodyBytes  []byte // bytes from header through last payload byte, for checksum
	frame      *Frame
	length     int
	lastByteAt time.Time

	framingErrors uint64
	checksumErrors uint64
}

// NewDecoder constructs a Decoder for the given framing variant.
func NewDecoder(framing Framing) *Decoder {
	d := &Decoder{framing: framing}
	switch framing {
	case FramingPentair16:
		d.preamble = []byte{0xFF, 0x00, 0xFF, header16}
	default:
		d.preamble = []byte{header2a, header2b}
	}
	d.reset()
	return d
}

func (d *Decoder) reset() {
	d.state = stateHunt
	d.huntBuf = d.huntBuf[:0]
	d.bodyBytes = d.bodyBytes[:0]
	d.frame = nil
	d.length = 0
}

// FramingErrors returns the count of frames aborted for an invalid
// length or an inter-byte timeout since construction. Checksum
// mismatches are counted by ChecksumErrors instead.
func (d *Decoder) FramingErrors() uint64 { return d.framingErrors }

// ChecksumErrors returns the count of frames rejected for a checksum
// mismatch.
func (d *Decoder) ChecksumErrors() uint64 { return d.checksumErrors }

// DecodeByte feeds one wire byte through the state machine. It returns
// a completed Frame when one becomes available, or an error describing
// why an in-progress frame was abandoned. In both the nil/nil and error
// cases the caller should keep feeding bytes — the decoder has already
// resynchronized.
func (d *Decoder) DecodeByte(b byte, now time.Time) (*Frame, error) {
	if d.state != stateHunt && !d.lastByteAt.IsZero() && now.Sub(d.lastByteAt) > interByteWindow {
		d.framingErrors++
		d.reset()
	}
	d.lastByteAt = now

	switch d.state {
	case stateHunt:
		return d.decodeHunt(b)
	case stateFlag:
		d.bodyBytes = append(d.bodyBytes, b)
		d.state = stateDest
		return nil, nil
	case stateDest:
		d.bodyBytes = append(d.bodyBytes, b)
		d.frame.Dest = b
		d.state = stateSrc
		return nil, nil
	case stateSrc:
		d.bodyBytes = append(d.bodyBytes, b)
		d.frame.Src = b
		d.state = stateAction
		return nil, nil
	case stateAction:
		d.bodyBytes = append(d.bodyBytes, b)
		d.frame.Action = uint16(b)
		d.state = stateLength
		return nil, nil
	case stateLength:
		if b > MaxPayloadSize {
			d.framingErrors++
			d.reset()
			return nil, poolerr.ProtocolError(0, fmt.Sprintf("invalid length %d", b))
		}
		d.bodyBytes = append(d.bodyBytes, b)
		d.length = int(b)
		d.frame.Payload = make([]byte, 0, d.length)
		if d.length == 0 {
			d.state = stateChecksumHi
		} else {
			d.state = stateBody
		}
		return nil, nil
	case stateBody:
		d.bodyBytes = append(d.bodyBytes, b)
		d.frame.Payload = append(d.frame.Payload, b)
		if len(d.frame.Payload) >= d.length {
			d.state = stateChecksumHi
		}
		return nil, nil
	case stateChecksumHi:
		d.frame.Checksum = uint16(b) << 8
		d.state = stateChecksumLo
		return nil, nil
	case stateChecksumLo:
		d.frame.Checksum |= uint16(b)
		want := CalculateChecksum(d.bodyBytes)
		frame := d.frame
		frame.Timestamp = now
		d.reset()
		if want != frame.Checksum {
			d.checksumErrors++
			return nil, poolerr.ProtocolError(0, fmt.Sprintf("checksum mismatch: got 0x%04X want 0x%04X", frame.Checksum, want))
		}
		return frame, nil
	default:
		d.reset()
		return nil, poolerr.Internal(fmt.Errorf("invalid decoder state"))
	}
}

// decodeHunt implements preamble resynchronization: a sliding window
// over incoming bytes that locks onto the next valid preamble. After a
// checksum failure the whole rejected frame is discarded (reset also
// clears huntBuf) and hunting starts with the byte after its checksum;
// the rejected frame's own bytes are not re-scanned for a preamble.
func (d *Decoder) decodeHunt(b byte) (*Frame, error) {
	d.huntBuf = append(d.huntBuf, b)
	if len(d.huntBuf) > len(d.preamble) {
		d.huntBuf = d.huntBuf[len(d.huntBuf)-len(d.preamble):]
	}
	if len(d.huntBuf) < len(d.preamble) {
		return nil, nil
	}
	for i, pb := range d.preamble {
		if d.huntBuf[i] != pb {
			return nil, nil
		}
	}
	d.frame = &Frame{}
	d.bodyBytes = d.bodyBytes[:0]
	if d.framing == FramingPentair2 {
		d.bodyBytes = append(d.bodyBytes, d.preamble...)
	} else {
		// Pentair-16's checksum covers header through payload, not the
		// 3-byte FF 00 FF preamble; only the 0xA5 header byte counts.
		d.bodyBytes = append(d.bodyBytes, header16)
	}
	if d.framing == FramingPentair16 {
		d.state = stateFlag
	} else {
		d.state = stateDest
	}
	d.huntBuf = d.huntBuf[:0]
	return nil, nil
}
