package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("expected addr %q, got %q", DefaultAddr, cfg.Server.Addr)
	}
	if cfg.Client.URL != DefaultServerURL {
		t.Errorf("expected url %q, got %q", DefaultServerURL, cfg.Client.URL)
	}
	d, err := cfg.ClientTimeout()
	if err != nil || d != 10*time.Second {
		t.Errorf("expected 10s client timeout, got %v (%v)", d, err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" || cfg.UI.Theme != "classic" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.toml", `
[server]
addr = ":9090"
empty = true

[client]
url = "http://example.test:9090"
timeout = "2s"

[log]
level = "debug"
format = "json"

[ui]
theme = "mono"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("expected Path %q, got %q", path, cfg.Path)
	}
	if cfg.Server.Addr != ":9090" || !cfg.Server.Empty {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Client.URL != "http://example.test:9090" {
		t.Errorf("unexpected url %q", cfg.Client.URL)
	}
	if d, _ := cfg.ClientTimeout(); d != 2*time.Second {
		t.Errorf("expected 2s, got %v", d)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	if cfg.UI.Theme != "mono" {
		t.Errorf("unexpected theme %q", cfg.UI.Theme)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("expected default shutdown timeout, got %q", cfg.Server.ShutdownTimeout)
	}
}

func TestLoadProjectFileFromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "[ui]\ntheme = \"neon\"\n")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UI.Theme != "neon" {
		t.Errorf("expected theme from %s, got %q", FileName, cfg.UI.Theme)
	}
	if cfg.Path != FileName {
		t.Errorf("expected Path %q, got %q", FileName, cfg.Path)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.toml", "[server\naddr = ")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "loading config file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.toml", "[client]\nurl = \"http://file\"\n")
	t.Setenv("TODO_SERVER", "http://env")
	t.Setenv("TODO_LOG_LEVEL", "warn")
	t.Setenv("TODO_ADDR", ":7000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Client.URL != "http://env" {
		t.Errorf("expected env url, got %q", cfg.Client.URL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected env level, got %q", cfg.Log.Level)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("expected env addr, got %q", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = " " }},
		{"empty url", func(c *Config) { c.Client.URL = "" }},
		{"bad timeout", func(c *Config) { c.Client.Timeout = "soon" }},
		{"negative timeout", func(c *Config) { c.Client.Timeout = "-1s" }},
		{"bad shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
