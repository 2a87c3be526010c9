package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Sim.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Sim.Re <= 0 {
		t.Error("re should be positive")
	}
	if len(cfg.Flow) != 1 || cfg.Flow[0].Type != "ring" {
		t.Errorf("expected a single ring, got %+v", cfg.Flow)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("ring", "single")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Flow[0].N != 64 {
		t.Errorf("expected 64 particles, got %d", cfg.Flow[0].N)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("ring", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "single") != nil {
		t.Error("expected nil for nonexistent category")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("body")
	want := []string{"cube", "sphere", "spinning-plate"}
	if strings.Join(presets, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent category")
	}
	if strings.Join(Categories(), ",") != "body,ring" {
		t.Errorf("unexpected categories %v", Categories())
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, cat := range Categories() {
		for _, name := range ListPresets(cat) {
			if err := GetPreset(cat, name).Validate(); err != nil {
				t.Errorf("preset %s/%s: %v", cat, name, err)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Sim.Dt = 0 }},
		{"negative re", func(c *Config) { c.Sim.Re = -1 }},
		{"negative steps", func(c *Config) { c.Sim.Steps = -1 }},
		{"unknown flow", func(c *Config) { c.Flow[0].Type = "sheet" }},
		{"tiny ring", func(c *Config) { c.Flow[0].N = 2 }},
		{"unknown shape", func(c *Config) { c.Bodies = []BodyConfig{{Shape: "torus"}} }},
		{"too many bcs", func(c *Config) { c.Bodies = []BodyConfig{{Shape: "quad", BCs: 4}} }},
		{"empty line", func(c *Config) { c.Measure = []MeasureConfig{{Type: "line"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Sim.Re = 0
	cfg.Sim.IPS = 0.05
	if err := cfg.Validate(); err != nil {
		t.Errorf("ips should stand in for re: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")

	cfg := GetPreset("body", "sphere")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Sim.Freestream != (Vec{1, 0, 0}) {
		t.Errorf("expected freestream [1 0 0], got %v", loaded.Sim.Freestream)
	}
	if len(loaded.Flow) != 0 {
		t.Errorf("expected no flow, got %d entries", len(loaded.Flow))
	}
	if len(loaded.Bodies) != 1 || loaded.Bodies[0].Refine != 2 {
		t.Errorf("unexpected bodies %+v", loaded.Bodies)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("sim:\n  dt: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative dt")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
