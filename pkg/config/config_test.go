package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Viewport.Width != 800 || cfg.Viewport.Height != 600 {
		t.Errorf("default viewport = %+v", cfg.Viewport)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("default backend = %q", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default server addr = %q", cfg.Server.Addr)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[viewport]
width = 1024
height = 768

[sim]
repulsion = 150.0
friction = 0.9

[cache]
backend = "redis"
redis_addr = "localhost:6379"

[server]
addr = ":9090"
mongo_uri = "mongodb://localhost:27017"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Viewport.Width != 1024 {
		t.Errorf("viewport width = %v, want 1024", cfg.Viewport.Width)
	}
	if cfg.Sim.Repulsion != 150.0 {
		t.Errorf("sim repulsion = %v, want 150", cfg.Sim.Repulsion)
	}
	if cfg.Sim.Friction != 0.9 {
		t.Errorf("sim friction = %v, want 0.9", cfg.Sim.Friction)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("mongo uri = %q", cfg.Server.MongoURI)
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[viewport]
width = 1280
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Viewport.Width != 1280 {
		t.Errorf("viewport width = %v, want 1280", cfg.Viewport.Width)
	}
	if cfg.Viewport.Height != 600 {
		t.Errorf("viewport height = %v, want default 600", cfg.Viewport.Height)
	}
}

func TestLoadFileRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "memcached"
`)
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadFileRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, "[viewport\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPathUsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	path, err := Path()
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	want := filepath.Join("/tmp/xdg-test", "constel", "config.toml")
	if path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
}
