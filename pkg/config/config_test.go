package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	errs "github.com/loomtools/dtxwif/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[convert]
overwrite = true
workers = 8

[cache]
redis_url = "redis://cache:6379/1"
ttl = "1h"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.Convert.Overwrite = true
	want.Convert.Workers = 8
	want.Cache.RedisURL = "redis://cache:6379/1"
	want.Cache.TTL = Duration{time.Hour}
	want.Server.Addr = "127.0.0.1:9000"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaultPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing default file should give defaults (-want +got):\n%s", diff)
	}
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, AppName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[convert]\nworkers = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Convert.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Convert.Workers)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errs.Code
		substr  string
	}{
		{"syntax", "[convert\n", errs.ErrCodeInvalidInput, ""},
		{"unknown key", "[convert]\nthreads = 2\n", errs.ErrCodeInvalidInput, "convert.threads"},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errs.ErrCodeInvalidInput, ""},
		{"negative workers", "[convert]\nworkers = -1\n", errs.ErrCodeInvalidInput, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errs.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if tt.substr != "" && !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("err %q does not mention %q", err, tt.substr)
			}
		})
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("err = %v, want %s", err, errs.ErrCodeIO)
	}
}

func TestCacheDir(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = "/tmp/explicit"
	if got, _ := cfg.CacheDir(); got != "/tmp/explicit" {
		t.Errorf("CacheDir = %q", got)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	cfg.Cache.Dir = ""
	if got, _ := cfg.CacheDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("CacheDir = %q", got)
	}
}
