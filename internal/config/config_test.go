package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jedtool.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[programmer]
speed_hz = 500000
verify = false

[output]
color = "off"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Programmer.SpeedHz != 500000 || cfg.Programmer.Verify {
		t.Fatalf("programmer = %+v", cfg.Programmer)
	}
	if cfg.Programmer.Adapter != "simulator" {
		t.Fatalf("adapter = %q, want default simulator", cfg.Programmer.Adapter)
	}
	if cfg.Output.Color != "off" || cfg.Output.Format != "json" {
		t.Fatalf("output = %+v", cfg.Output)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "[programmer\n"},
		{name: "unknown key", content: "[programmer]\nclock = 3\n"},
		{name: "bad color", content: "[output]\ncolor = \"rainbow\"\n"},
		{name: "bad format", content: "[output]\nformat = \"xml\"\n"},
		{name: "negative speed", content: "[programmer]\nspeed_hz = -1\n"},
		{name: "empty adapter", content: "[programmer]\nadapter = \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}
