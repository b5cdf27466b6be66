// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package board

import (
	"errors"
	"testing"

	"github.com/poolautomation/poolcore/internal/model"
	"github.com/poolautomation/poolcore/internal/poolerr"
	"github.com/poolautomation/poolcore/internal/protocol"
)

func TestEncodeSetCircuitState(t *testing.T) {
	b := NewIntelliCenter(0x21, 0x10)
	frames, err := b.Encode(SetCircuitStateIntent{CircuitID: 6, On: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	f := frames[0]
	if f.Action != intelliCenterActions.setCircuit {
		t.Fatalf("unexpected action %d", f.Action)
	}
	if f.Payload[0] != 6 || f.Payload[1] != 1 {
		t.Fatalf("unexpected payload %v", f.Payload)
	}
	if f.Dest != 0x10 || f.Src != 0x21 {
		t.Fatalf("unexpected addressing dest=%x src=%x", f.Dest, f.Src)
	}
}

func TestEncodeRejectsUnsupportedCapability(t *testing.T) {
	b := NewSunTouch(0x21, 0x10)
	_, err := b.Encode(SetChlorinatorIntent{ChlorinatorID: 1, PoolPercent: 50})
	if err == nil {
		t.Fatal("expected InvalidOperation for chlorinator intent on SunTouch")
	}
	var perr *poolerr.Error
	if !errors.As(err, &perr) || perr.Kind != poolerr.KindInvalidOperation {
		t.Fatalf("expected KindInvalidOperation, got %v", err)
	}
}

func TestDecodeCircuitStatusProducesPatch(t *testing.T) {
	b := NewIntelliTouch(0x21, 0x10)
	patches, err := b.Decode(&protocol.Frame{Action: legacyActions.circuitStatus, Payload: []byte{4, 1}})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(patches) != 1 || patches[0].Kind != "circuit" || patches[0].ID != 4 {
		t.Fatalf("unexpected patches: %+v", patches)
	}

	cfg := model.NewConfigGraph()
	st := model.NewStateGraph()
	post, changed := patches[0].Apply(cfg, st)
	if len(changed) != 1 || changed[0] != "isOn" {
		t.Fatalf("expected isOn change, got %v", changed)
	}
	cs := post.(*model.CircuitState)
	if !cs.IsOn {
		t.Fatal("expected circuit state to be on")
	}

	// Applying the identical status again should be a no-op diff.
	_, changedAgain := patches[0].Apply(cfg, st)
	if len(changedAgain) != 0 {
		t.Fatalf("expected idempotent re-apply, got changed=%v", changedAgain)
	}
}

func TestDecodeUnknownActionReturnsNil(t *testing.T) {
	b := NewIntelliTouch(0x21, 0x10)
	patches, err := b.Decode(&protocol.Frame{Action: 0xFFFF})
	if err != nil || patches != nil {
		t.Fatalf("expected nil, nil for unknown action; got %v, %v", patches, err)
	}
}
