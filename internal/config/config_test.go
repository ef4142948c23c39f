package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Valid(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test-field.yaml")
	yaml := `
field:
  name: field-x
  width: 100
  height: 100
base_station:
  x: 50
  y: 50
nodes:
  - { id: 0, type: moisture, x: 70, y: 50 }
  - { id: 1, type: ph, x: 30, y: 50 }
max_cycles: 3
`
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	cfg, err := Load(tmpFile, "../../schemas/simulation.cue")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(cfg.Nodes) != 2 || cfg.Nodes[1].Type != "ph" {
		t.Errorf("unexpected node data: %+v", cfg.Nodes)
	}
	if cfg.MaxCycles != 3 {
		t.Errorf("max_cycles = %d, want 3", cfg.MaxCycles)
	}
	// Unset energy parameters fall back to node defaults.
	if cfg.Defaults.Battery != 100 || cfg.Defaults.EnergyPerSense != 0.05 {
		t.Errorf("defaults not applied: %+v", cfg.Defaults)
	}
	if cfg.Animation.RefreshIntervalMS != 3000 || cfg.Animation.FrameRate != 30 {
		t.Errorf("animation defaults not applied: %+v", cfg.Animation)
	}
}

func TestLoadConfig_UnknownType(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "bad-field.yaml")
	yaml := `
nodes:
  - { id: 0, type: wind, x: 1, y: 1 }
`
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if _, err := Load(tmpFile, "../../schemas/simulation.cue"); err == nil {
		t.Fatal("expected error for unknown data type")
	}
}

func TestLoadConfig_DuplicateID(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "dup-field.yaml")
	yaml := `
nodes:
  - { id: 0, type: moisture, x: 1, y: 1 }
  - { id: 0, type: light, x: 2, y: 2 }
`
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if _, err := Load(tmpFile, "../../schemas/simulation.cue"); err == nil {
		t.Fatal("expected error for duplicate node id")
	}
}

func TestLoadConfig_NoNodes(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "empty-field.yaml")
	if err := os.WriteFile(tmpFile, []byte("max_cycles: 5\n"), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if _, err := Load(tmpFile, "../../schemas/simulation.cue"); err == nil {
		t.Fatal("expected error when no nodes are defined")
	}
}

func TestShippedConfigValidates(t *testing.T) {
	cfg, err := Load("../../config/simulation.yaml", "../../schemas/simulation.cue")
	if err != nil {
		t.Fatalf("shipped config failed to load: %v", err)
	}
	if len(cfg.Nodes) != 5 || len(cfg.Animation.Nodes) != 3 {
		t.Errorf("unexpected node counts: %d discrete, %d animation", len(cfg.Nodes), len(cfg.Animation.Nodes))
	}
}
