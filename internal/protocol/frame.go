// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package protocol

import "time"

// Frame is a decoded or to-be-encoded wire message, common to both
// framing variants. Action is the protocol's action/message code
// (spec.md GLOSSARY: "Action code"); Dest/Src are the bus addresses the
// variant uses for peer routing (Pentair-2 additionally distinguishes
// controller vs. panel addresses via these same fields).
type Frame struct {
	Dest      byte
	Src       byte
	Action    uint16
	Payload   []byte
	Checksum  uint16
	Timestamp time.Time
}

// Descriptor is the correlating key a response matcher uses to pair an
// inbound Frame with the outbound transaction that is waiting for it
// (spec.md §4.4: "(peer, action, correlating-id)").
type Descriptor struct {
	Peer        byte
	Action      uint16
	Correlation string
}

// Matches reports whether f is the response the descriptor describes.
// It compares Peer (against f.Src) and Action only; Correlation is a
// label and is not compared.
func (d Descriptor) Matches(f *Frame) bool {
	return f.Src == d.Peer && f.Action == d.Action
}
