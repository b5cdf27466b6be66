// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package schedule

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/poolautomation/poolcore/internal/model"
)

type fakeDriver struct {
	calls map[int]bool
}

func (f *fakeDriver) SetCircuitState(circuitID int, on bool) error {
	if f.calls == nil {
		f.calls = make(map[int]bool)
	}
	f.calls[circuitID] = on
	return nil
}

func TestUnionOnAcrossOverlappingSchedules(t *testing.T) {
	cfg := model.NewConfigGraph()
	cfg.Schedules.Upsert(&model.ScheduleConfig{ID: 1, Circuit: 6, StartTime: 480, EndTime: 600, DaysMask: 0xFF})
	cfg.Schedules.Upsert(&model.ScheduleConfig{ID: 2, Circuit: 6, StartTime: 590, EndTime: 700, DaysMask: 0xFF})

	drv := &fakeDriver{}
	exec := NewExecutor(drv, time.UTC, 0, 0, zerolog.Nop())

	// 09:55 (595 min): both schedules are active (480-600 and 590-700).
	now := time.Date(2026, 7, 31, 9, 55, 0, 0, time.UTC)
	exec.Tick(now, cfg)
	if !drv.calls[6] {
		t.Fatalf("expected circuit 6 on during overlap window, calls=%v", drv.calls)
	}

	// 11:30 (690 min): schedule 1 ended, schedule 2 still active (590-700).
	now = time.Date(2026, 7, 31, 11, 30, 0, 0, time.UTC)
	exec.Tick(now, cfg)
	if !drv.calls[6] {
		t.Fatal("expected circuit 6 to remain on via schedule 2's union")
	}

	// 12:00 (720 min): both schedules have ended.
	now = time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	exec.Tick(now, cfg)
	if drv.calls[6] {
		t.Fatal("expected circuit 6 off once every schedule has released it")
	}
}

func TestMidnightWrapWindow(t *testing.T) {
	cfg := model.NewConfigGraph()
	cfg.Schedules.Upsert(&model.ScheduleConfig{ID: 1, Circuit: 9, StartTime: 22 * 60, EndTime: 2 * 60, WrapsMidnight: true, DaysMask: 0xFF})

	drv := &fakeDriver{}
	exec := NewExecutor(drv, time.UTC, 0, 0, zerolog.Nop())

	now := time.Date(2026, 7, 31, 23, 30, 0, 0, time.UTC)
	exec.Tick(now, cfg)
	if !drv.calls[9] {
		t.Fatal("expected circuit 9 on just before midnight")
	}
}

func TestDayMaskExcludesCircuit(t *testing.T) {
	cfg := model.NewConfigGraph()
	// DaysMask has only the bit of the weekday after "now" set, so the
	// schedule must not fire on "now"'s weekday.
	now := time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC) // Monday
	otherDayBit := uint8(1) << uint((int(now.Weekday())+1)%7)
	cfg.Schedules.Upsert(&model.ScheduleConfig{ID: 1, Circuit: 2, StartTime: 0, EndTime: 1439, DaysMask: otherDayBit})

	drv := &fakeDriver{}
	exec := NewExecutor(drv, time.UTC, 0, 0, zerolog.Nop())
	exec.Tick(now, cfg)
	if drv.calls[2] {
		t.Fatal("expected circuit 2 to stay off on an excluded weekday")
	}
}
