// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package protocol

import (
	"testing"
	"time"
)

func feed(t *testing.T, d *Decoder, data []byte) (*Frame, []error) {
	t.Helper()
	var errs []error
	now := time.Now()
	for _, b := range data {
		f, err := d.DecodeByte(b, now)
		if err != nil {
			errs = append(errs, err)
		}
		if f != nil {
			return f, errs
		}
	}
	return nil, errs
}

func TestRoundTripPentair16(t *testing.T) {
	f := &Frame{Dest: 0x10, Src: 0x00, Action: 0x86, Payload: []byte{0x06, 0x01}}
	wire, err := EncodeFrame(FramingPentair16, f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Matches the literal example in spec.md §8 scenario 1 up to the
	// preamble-flag byte, which is always zero on transmit.
	want := []byte{0xFF, 0x00, 0xFF, 0xA5, 0x00, 0x10, 0x00, 0x86, 0x02, 0x06, 0x01}
	if len(wire) != len(want)+2 {
		t.Fatalf("unexpected wire length: %d", len(wire))
	}
	for i := range want {
		if wire[i] != want[i] {
			t.Fatalf("byte %d: got 0x%02X want 0x%02X", i, wire[i], want[i])
		}
	}

	d := NewDecoder(FramingPentair16)
	got, errs := feed(t, d, wire)
	if len(errs) != 0 {
		t.Fatalf("unexpected decode errors: %v", errs)
	}
	if got == nil {
		t.Fatal("expected a decoded frame")
	}
	if got.Dest != f.Dest || got.Src != f.Src || got.Action != f.Action {
		t.Fatalf("decoded frame mismatch: %+v", got)
	}
	if string(got.Payload) != string(f.Payload) {
		t.Fatalf("payload mismatch: got %v want %v", got.Payload, f.Payload)
	}
}

func TestRoundTripPentair2(t *testing.T) {
	f := &Frame{Dest: 0x00, Src: 0x20, Action: 0x05, Payload: []byte{1, 2, 3}}
	wire, err := EncodeFrame(FramingPentair2, f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	d := NewDecoder(FramingPentair2)
	got, errs := feed(t, d, wire)
	if len(errs) != 0 {
		t.Fatalf("unexpected decode errors: %v", errs)
	}
	if got == nil || got.Action != f.Action || string(got.Payload) != string(f.Payload) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

// TestChecksumResync exercises spec.md §8 scenario 2: a frame with a
// bad checksum is rejected and the decoder resynchronizes in time to
// decode the very next well-formed frame, with no transaction
// incorrectly completed.
func TestChecksumResync(t *testing.T) {
	good := &Frame{Dest: 0x10, Src: 0x00, Action: 0x86, Payload: []byte{6, 1}}
	wire, err := EncodeFrame(FramingPentair16, good)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	corrupted := append([]byte{}, wire...)
	corrupted[len(corrupted)-1] ^= 0xFF // flip checksum-lo

	stream := append(append([]byte{}, corrupted...), wire...)

	d := NewDecoder(FramingPentair16)
	now := time.Now()
	var frames []*Frame
	var sawChecksumErr bool
	for _, b := range stream {
		f, err := d.DecodeByte(b, now)
		if err != nil {
			sawChecksumErr = true
		}
		if f != nil {
			frames = append(frames, f)
		}
	}
	if !sawChecksumErr {
		t.Fatal("expected a checksum error from the corrupted frame")
	}
	if len(frames) != 1 {
		t.Fatalf("expected exactly one successfully decoded frame, got %d", len(frames))
	}
	if d.ChecksumErrors() != 1 {
		t.Fatalf("expected ChecksumErrors()==1, got %d", d.ChecksumErrors())
	}
}

func TestChecksumMath(t *testing.T) {
	if got := CalculateChecksum([]byte{0x01, 0x02, 0x03}); got != 6 {
		t.Fatalf("got %d want 6", got)
	}
	// Wraps modulo 65536.
	data := make([]byte, 1000)
	for i := range data {
		data[i] = 0xFF
	}
	got := CalculateChecksum(data)
	want := uint16((255 * 1000) % 65536)
	if got != want {
		t.Fatalf("got %d want %d", got, want)
	}
}

func TestValueMap(t *testing.T) {
	vm := NewValueMap(
		ValueEntry{Val: 0, Name: "off"},
		ValueEntry{Val: 1, Name: "on"},
	)
	e, ok := vm.ByVal(1)
	if !ok || e.Name != "on" {
		t.Fatalf("ByVal(1) = %+v, %v", e, ok)
	}
	e, ok = vm.ByName("off")
	if !ok || e.Val != 0 {
		t.Fatalf("ByName(off) = %+v, %v", e, ok)
	}
	if _, ok := vm.ByVal(99); ok {
		t.Fatal("expected miss")
	}
}
