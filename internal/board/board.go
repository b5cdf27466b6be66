// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package board implements the Board Dispatch (spec.md §4.5): a
// variant-parameterized façade that translates high-level intents into
// wire messages for a specific controller family, and decodes inbound
// wire messages back into equipment model patches.
package board

import (
	"github.com/poolautomation/poolcore/internal/poolerr"
	"github.com/poolautomation/poolcore/internal/protocol"
)

// Variant is one of the controller families spec.md §2 names.
type Variant int

const (
	VariantIntelliCenter Variant = iota
	VariantIntelliTouch
	VariantEasyTouch
	VariantSunTouch
	VariantIntelliCom
	VariantAquaLink
	VariantStandalone
)

func (v Variant) String() string {
	switch v {
	case VariantIntelliCenter:
		return "IntelliCenter"
	case VariantIntelliTouch:
		return "IntelliTouch"
	case VariantEasyTouch:
		return "EasyTouch"
	case VariantSunTouch:
		return "SunTouch"
	case VariantIntelliCom:
		return "IntelliCom"
	case VariantAquaLink:
		return "AquaLink"
	default:
		return "Standalone"
	}
}

// ParseVariant resolves a configuration string (as found in a port's
// "variant" field) to a Variant, defaulting to Standalone for an
// unrecognized name so a simulator/bench configuration never fails to
// start over a typo.
func ParseVariant(name string) Variant {
	switch name {
	case "IntelliCenter":
		return VariantIntelliCenter
	case "IntelliTouch":
		return VariantIntelliTouch
	case "EasyTouch":
		return VariantEasyTouch
	case "SunTouch":
		return VariantSunTouch
	case "IntelliCom":
		return VariantIntelliCom
	case "AquaLink":
		return VariantAquaLink
	default:
		return VariantStandalone
	}
}

// Capability flags the optional behaviors a variant may or may not
// support (spec.md §4.5: "pre-queue validation rejects ... unsupported
// variant capabilities").
type Capability int

const (
	CapCoolSetpoint Capability = iota
	CapChlorinator
	CapChemController
	CapLightThemes
	CapVariableSpeedPump
	CapCircuitGroups
	CapCover
)

// Framing reports the wire framing a variant speaks (spec.md §4.2).
func (v Variant) Framing() protocol.Framing {
	if v == VariantIntelliCenter {
		return protocol.FramingPentair2
	}
	return protocol.FramingPentair16
}

// Board is the dispatch façade for one controller variant: it knows
// the variant's value maps, which capabilities it exposes, and how to
// translate Intents into wire Frames and wire Frames into Patches.
type Board struct {
	variant      Variant
	capabilities map[Capability]bool
	values       *ValueMaps
	actions      actionTable
	srcAddr      byte
	destAddr     byte
	encoders     map[IntentKind]IntentEncoder
	decoders     map[uint16]FrameDecoder
}

// ValueMaps bundles every ValueMap a variant's encoders/decoders need
// (spec.md §4.3: circuit functions, heat modes, pump types, ...).
type ValueMaps struct {
	CircuitFunction *protocol.ValueMap
	HeatMode        *protocol.ValueMap
	PumpType        *protocol.ValueMap
	BodyType        *protocol.ValueMap
}

// IntentEncoder turns an Intent into zero or more outbound Frames.
type IntentEncoder func(b *Board, intent Intent) ([]*protocol.Frame, error)

// FrameDecoder turns an inbound Frame into zero or more Patches.
type FrameDecoder func(b *Board, f *protocol.Frame) ([]Patch, error)

// New constructs a Board for variant with the given capability set,
// value maps, and action tables. The per-variant constructors in
// variants.go assemble these.
func New(variant Variant, caps map[Capability]bool, values *ValueMaps, actions actionTable, srcAddr, destAddr byte, encoders map[IntentKind]IntentEncoder, decoders map[uint16]FrameDecoder) *Board {
	return &Board{
		variant: variant, capabilities: caps, values: values,
		actions: actions, srcAddr: srcAddr, destAddr: destAddr,
		encoders: encoders, decoders: decoders,
	}
}

func (b *Board) Variant() Variant      { return b.variant }
func (b *Board) Values() *ValueMaps    { return b.values }
func (b *Board) Has(c Capability) bool { return b.capabilities[c] }

// Encode validates intent against this variant's capabilities and
// translates it into wire frames (spec.md §4.5 pre-queue validation).
func (b *Board) Encode(intent Intent) ([]*protocol.Frame, error) {
	if req, ok := intent.RequiredCapability(); ok && !b.Has(req) {
		return nil, poolerr.InvalidOperation(b.variant.String(), intent.Kind().String())
	}
	enc, ok := b.encoders[intent.Kind()]
	if !ok {
		return nil, poolerr.InvalidOperation(b.variant.String(), intent.Kind().String())
	}
	return enc(b, intent)
}

// Decode turns an inbound frame into model patches, or (nil, nil) if
// this variant has no decoder registered for the frame's action — an
// unrecognized-but-not-erroneous spontaneous message.
func (b *Board) Decode(f *protocol.Frame) ([]Patch, error) {
	dec, ok := b.decoders[f.Action]
	if !ok {
		return nil, nil
	}
	return dec(b, f)
}
