// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package delay

import (
	"errors"
	"testing"
	"time"

	"github.com/poolautomation/poolcore/internal/poolerr"
)

func TestStartAndPending(t *testing.T) {
	m := NewManager()
	key := Key{Kind: "pump", ID: 1, Purpose: PurposeChangeCooldown}
	if err := m.Start(key, 50*time.Millisecond, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if remaining, pending := m.Pending(key); !pending || remaining <= 0 {
		t.Fatalf("expected pending timer, got remaining=%v pending=%v", remaining, pending)
	}
	time.Sleep(80 * time.Millisecond)
	if _, pending := m.Pending(key); pending {
		t.Fatal("expected timer to have elapsed")
	}
}

func TestImmediateFailsFastOnPendingSlot(t *testing.T) {
	m := NewManager()
	key := Key{Kind: "heater", ID: 1, Purpose: PurposeHeaterCooldown}
	if err := m.Start(key, time.Second, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	err := m.Start(key, time.Second, true)
	if err == nil {
		t.Fatal("expected InterlockViolation for immediate start on pending slot")
	}
	var perr *poolerr.Error
	if !errors.As(err, &perr) || perr.Kind != poolerr.KindInterlockViolation {
		t.Fatalf("expected KindInterlockViolation, got %v", err)
	}
}

func TestInterlockBlocksExcludedKey(t *testing.T) {
	m := NewManager()
	solar := Key{Kind: "heater", ID: 1, Purpose: PurposeInterlock}
	gas := Key{Kind: "heater", ID: 2, Purpose: PurposeInterlock}
	m.DeclareInterlock(solar, gas)

	if err := m.Start(solar, time.Second, false); err != nil {
		t.Fatalf("Start solar: %v", err)
	}
	if err := m.Start(gas, time.Second, false); err == nil {
		t.Fatal("expected interlock violation starting gas heater while solar is active")
	}
}

func TestCancelClearsSlot(t *testing.T) {
	m := NewManager()
	key := Key{Kind: "valve", ID: 3, Purpose: PurposeChangeCooldown}
	_ = m.Start(key, time.Minute, false)
	m.Cancel(key)
	if _, pending := m.Pending(key); pending {
		t.Fatal("expected slot cleared after Cancel")
	}
}
