package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Canvas.Height != 720 {
		t.Errorf("Canvas.Height = %v, want 720", cfg.Canvas.Height)
	}
	if cfg.Physics.Gravity != 1.2 {
		t.Errorf("Physics.Gravity = %v, want 1.2", cfg.Physics.Gravity)
	}
	if cfg.Obstacles.GapHeight != 150 {
		t.Errorf("Obstacles.GapHeight = %v, want 150", cfg.Obstacles.GapHeight)
	}
	if cfg.Session.TickRate != 60 {
		t.Errorf("Session.TickRate = %v, want 60", cfg.Session.TickRate)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := []byte("canvas:\n  width: 800\n  height: 600\nsession:\n  tick_rate: 30\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing fixture failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(custom) failed: %v", err)
	}
	if cfg.Canvas.Height != 600 {
		t.Errorf("Canvas.Height = %v, want 600", cfg.Canvas.Height)
	}
	if cfg.Session.TickRate != 30 {
		t.Errorf("Session.TickRate = %v, want 30", cfg.Session.TickRate)
	}
}

func TestLoadMissingCustomPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load with a missing explicit path must fail")
	}
}

func TestEmbeddedAndHardcodedDefaultsAgree(t *testing.T) {
	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != Default() {
		t.Errorf("embedded defaults %+v differ from hardcoded %+v", loaded, Default())
	}
}
