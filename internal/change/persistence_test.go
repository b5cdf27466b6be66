// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package change

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/poolautomation/poolcore/internal/model"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	log := zerolog.Nop()
	cfg, err := LoadConfig(filepath.Join(dir, "pool-config.json"), log)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bodies.Len() != 0 {
		t.Fatalf("expected empty bodies, got %d", cfg.Bodies.Len())
	}
}

func TestLoadConfigQuarantinesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool-config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	log := zerolog.Nop()
	_, err := LoadConfig(path, log)
	if err == nil {
		t.Fatal("expected ConfigurationCorrupt error")
	}
	matches, _ := filepath.Glob(path + ".corrupt-*.json")
	if len(matches) != 1 {
		t.Fatalf("expected one quarantined file, found %v", matches)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("original corrupt path should be gone, stat err = %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool-config.json")

	cfg := model.NewConfigGraph()
	cfg.Equipment.Model = "IntelliCenter i10PS"
	cfg.Bodies.Upsert(&model.BodyConfig{ID: 1, Name: "Pool", Type: model.BodyPool, Capacity: 20000})
	cfg.Groups.Upsert(&model.GroupConfig{ID: 1, Name: "Color Show", Kind: model.GroupLightGroup})
	cfg.Groups.Upsert(&model.GroupConfig{ID: 2, Name: "Spa Jets Group", Kind: model.GroupCircuitGroup})

	doc := BuildConfigDocument(cfg)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := writeAtomic(path, data); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}

	log := zerolog.Nop()
	loaded, err := LoadConfig(path, log)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Equipment.Model != "IntelliCenter i10PS" {
		t.Fatalf("equipment model not round-tripped: %+v", loaded.Equipment)
	}
	b, ok := loaded.Bodies.Get(1)
	if !ok || b.Name != "Pool" {
		t.Fatalf("body not round-tripped: %+v", b)
	}
	lg, ok := loaded.Groups.Get(1)
	if !ok || lg.Kind != model.GroupLightGroup {
		t.Fatalf("light group kind not round-tripped: %+v", lg)
	}
	cg, ok := loaded.Groups.Get(2)
	if !ok || cg.Kind != model.GroupCircuitGroup {
		t.Fatalf("circuit group kind not round-tripped: %+v", cg)
	}
}

func TestWriterDebouncesAndFlushesOnDemand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool-state.json")
	calls := 0
	w := NewWriter(path, func() ([]byte, error) {
		calls++
		return []byte(`{"bodies":[]}`), nil
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.MarkDirty()
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one flush, got %d", calls)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read persisted file: %v", err)
	}
	if string(data) != `{"bodies":[]}` {
		t.Fatalf("unexpected persisted content: %s", data)
	}
}

func TestWriterQuietWindowFlushesAutomatically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool-state.json")
	flushed := make(chan struct{}, 1)
	w := NewWriter(path, func() ([]byte, error) {
		select {
		case flushed <- struct{}{}:
		default:
		}
		return []byte(`{}`), nil
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.MarkDirty()
	select {
	case <-flushed:
	case <-time.After(5 * time.Second):
		t.Fatal("writer never flushed within quiet window")
	}
}
