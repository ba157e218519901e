package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"STREAMHUB_HTTP_ADDR":                   "http.addr",
		"STREAMHUB_AUTH_JWT_SECRET":             "auth.jwt_secret",
		"STREAMHUB_SHELVES_POPULAR_WINDOW_DAYS": "shelves.popular_window_days",
		"STREAMHUB_LOG":                         "log",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http.addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Shelves.PopularWindowDays != 30 || cfg.Shelves.GenreLimit != 15 {
		t.Errorf("unexpected shelf defaults: %+v", cfg.Shelves)
	}
	if cfg.Auth.JWTTTL != 24*time.Hour {
		t.Errorf("jwt ttl = %v, want 24h", cfg.Auth.JWTTTL)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "http:\n  addr: \":9999\"\nshelves:\n  limit: 5\nlog:\n  format: console\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STREAMHUB_SHELVES_LIMIT", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Errorf("http.addr = %q, want :9999 from file", cfg.HTTP.Addr)
	}
	if cfg.Shelves.Limit != 7 {
		t.Errorf("shelves.limit = %d, want env override 7", cfg.Shelves.Limit)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("log.format = %q, want console", cfg.Log.Format)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STREAMHUB_LOG_FORMAT", "xml")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for log.format=xml")
	}
}
