package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Example env config:
// API_PORT=8080
// MEDIA_ROOT=/mnt/clips
// APP_SECRET=change-me
// USER_PASSWORD=hunter2
// PRIVATE_LIST=false
// THUMB_SIZE=480
// SCAN_INTERVAL=10m
type Config struct {
	Port         string
	MediaRoot    string
	AppSecret    string
	UserPassword string
	PrivateList  bool
	ThumbSize    int
	ScanInterval time.Duration
}

// AuthEnabled reports whether the shared-password scheme is active at all.
// With no password configured every request is treated as authenticated,
// which is the historical behavior of unconfigured deployments.
func (c Config) AuthEnabled() bool {
	return c.UserPassword != ""
}

// StatePath is the catalog document location under the media root.
func (c Config) StatePath() string {
	return filepath.Join(c.MediaRoot, "assets", "state.json")
}

// ThumbDir is where generated thumbnails live.
func (c Config) ThumbDir() string {
	return filepath.Join(c.MediaRoot, "assets", "thumbnails")
}

func Load() (Config, error) {
	cfg := Config{
		Port:         envDefault("API_PORT", envDefault("PORT", "8080")),
		MediaRoot:    os.Getenv("MEDIA_ROOT"),
		AppSecret:    os.Getenv("APP_SECRET"),
		UserPassword: os.Getenv("USER_PASSWORD"),
		PrivateList:  parseBool(os.Getenv("PRIVATE_LIST"), false),
		ThumbSize:    envDefaultInt("THUMB_SIZE", 480),
		ScanInterval: envDefaultDuration("SCAN_INTERVAL", 10*time.Minute),
	}
	if cfg.MediaRoot == "" {
		return cfg, fmt.Errorf("MEDIA_ROOT is required")
	}
	if cfg.UserPassword != "" && cfg.AppSecret == "" {
		return cfg, fmt.Errorf("APP_SECRET is required when USER_PASSWORD is set")
	}
	return cfg.normalize(), nil
}

func (c Config) normalize() Config {
	c.MediaRoot = strings.TrimRight(strings.TrimSpace(c.MediaRoot), "/")
	if c.ThumbSize <= 0 {
		c.ThumbSize = 480
	}
	if c.ScanInterval <= 0 {
		c.ScanInterval = 10 * time.Minute
	}
	return c
}

func envDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func envDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func envDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseBool(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
