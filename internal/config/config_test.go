package config

import (
	"path/filepath"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MEDIA_ROOT", "/mnt/clips")
	t.Setenv("APP_SECRET", "")
	t.Setenv("USER_PASSWORD", "")
	t.Setenv("PORT", "")
	t.Setenv("API_PORT", "")
	t.Setenv("PRIVATE_LIST", "")
	t.Setenv("THUMB_SIZE", "")
	t.Setenv("SCAN_INTERVAL", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ThumbSize != 480 {
		t.Errorf("ThumbSize = %d, want 480", cfg.ThumbSize)
	}
	if cfg.ScanInterval != 10*time.Minute {
		t.Errorf("ScanInterval = %v, want 10m", cfg.ScanInterval)
	}
	if cfg.AuthEnabled() {
		t.Error("auth must be disabled without USER_PASSWORD")
	}
	if cfg.PrivateList {
		t.Error("PrivateList must default to false")
	}
}

func TestLoadRequiresMediaRoot(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MEDIA_ROOT", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without MEDIA_ROOT")
	}
}

func TestLoadRequiresSecretWithPassword(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("USER_PASSWORD", "hunter2")
	if _, err := Load(); err == nil {
		t.Fatal("expected error: USER_PASSWORD without APP_SECRET")
	}
	t.Setenv("APP_SECRET", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.AuthEnabled() {
		t.Fatal("auth must be enabled with USER_PASSWORD set")
	}
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("API_PORT", "9999")
	t.Setenv("PRIVATE_LIST", "true")
	t.Setenv("THUMB_SIZE", "240")
	t.Setenv("SCAN_INTERVAL", "30s")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9999" || !cfg.PrivateList || cfg.ThumbSize != 240 || cfg.ScanInterval != 30*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestMediaRootNormalized(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MEDIA_ROOT", "/mnt/clips/")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MediaRoot != "/mnt/clips" {
		t.Fatalf("MediaRoot = %q, want trailing slash trimmed", cfg.MediaRoot)
	}
	if got := cfg.StatePath(); got != filepath.Join("/mnt/clips", "assets", "state.json") {
		t.Fatalf("StatePath = %q", got)
	}
	if got := cfg.ThumbDir(); got != filepath.Join("/mnt/clips", "assets", "thumbnails") {
		t.Fatalf("ThumbDir = %q", got)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"off", true, false},
		{"0", true, false},
		{"", true, true},
		{"gibberish", false, false},
	}
	for _, tt := range tests {
		if got := parseBool(tt.raw, tt.def); got != tt.want {
			t.Errorf("parseBool(%q, %v) = %v, want %v", tt.raw, tt.def, got, tt.want)
		}
	}
}
