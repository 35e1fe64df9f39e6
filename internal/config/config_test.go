package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/coverdock/internal/windows"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Titles.Main != "Lofi" || cfg.Titles.TrackInfo != "track-info" {
		t.Fatalf("unexpected default titles: %+v", cfg.Titles)
	}
	if cfg.TrackInfoGap.X != 10 || cfg.TrackInfoGap.Y != 10 {
		t.Fatalf("unexpected default gap: %+v", cfg.TrackInfoGap)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Exists {
		t.Fatal("expected Exists=false")
	}
	if res.Config.FrameRate != DefaultFrameRate {
		t.Fatalf("frame_rate = %d", res.Config.FrameRate)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Exists {
		t.Fatal("expected Exists=true")
	}
	if res.Config.MaxSide != DefaultMaxSide {
		t.Fatalf("max_side = %d", res.Config.MaxSide)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"titles:",
		"  main: Cover",
		"track_info_gap:",
		"  x: 4",
		"frame_rate: 30",
		"no_move_targets: [no-move, volume]",
		"log_level: debug",
		"hotkeys:",
		"  about: Mod4-a",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Titles.Main != "Cover" || cfg.Titles.TrackInfo != "track-info" {
		t.Fatalf("titles = %+v", cfg.Titles)
	}
	if cfg.TrackInfoGap.X != 4 || cfg.TrackInfoGap.Y != 10 {
		t.Fatalf("gap = %+v", cfg.TrackInfoGap)
	}
	if cfg.FrameRate != 30 {
		t.Fatalf("frame_rate = %d", cfg.FrameRate)
	}
	if len(cfg.NoMoveTargets) != 2 || cfg.NoMoveTargets[1] != "volume" {
		t.Fatalf("no_move_targets = %v", cfg.NoMoveTargets)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("level = %v", cfg.SlogLevel())
	}
	if cfg.Hotkeys.About != "Mod4-a" || cfg.Hotkeys.ToggleOnTop != "Mod4-Mod1-p" {
		t.Fatalf("hotkeys = %+v", cfg.Hotkeys)
	}
	if cfg.Labels()[windows.RoleMain] != "Cover" {
		t.Fatalf("labels = %v", cfg.Labels())
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "hotkey: Mod4-t\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadFromPath_ValidationErrorCarriesSource(t *testing.T) {
	path := writeConfig(t, "min_side: 150\nmax_side: 100\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "max_side" {
		t.Fatalf("path = %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("line = %d, want 2", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("error lacks location: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"duplicate titles", func(c *Config) { c.Titles.About = c.Titles.Settings }, "titles"},
		{"empty title", func(c *Config) { c.Titles.TrackInfo = "" }, "titles"},
		{"negative gap", func(c *Config) { c.TrackInfoGap.Y = -1 }, "track_info_gap"},
		{"zero min side", func(c *Config) { c.MinSide = 0 }, "min_side"},
		{"frame rate", func(c *Config) { c.FrameRate = 0 }, "frame_rate"},
		{"empty target", func(c *Config) { c.NoMoveTargets = []string{"a", " "} }, "no_move_targets.1"},
		{"settle", func(c *Config) { c.ResizeSettleMS = -5 }, "resize_settle_ms"},
		{"reconcile", func(c *Config) { c.ReconcileInterval = 0 }, "reconcile_interval"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"dialog", func(c *Config) { c.Dialogs.About.Height = 0 }, "dialogs.about.height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.FrameRate = 75
	cfg.NoMoveTargets = []string{"no-move", "knob"}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.FrameRate != 75 || len(res.Config.NoMoveTargets) != 2 {
		t.Fatalf("round trip lost values: %+v", res.Config)
	}
}

func TestSaveTo_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.SaveTo(path); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("invalid config was written")
	}
}

func TestDurationsAndSettingsPath(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ResizeSettle() != 200*time.Millisecond {
		t.Fatalf("settle = %v", cfg.ResizeSettle())
	}
	if cfg.ReconcileEvery() != 5*time.Second {
		t.Fatalf("reconcile = %v", cfg.ReconcileEvery())
	}

	if p, err := cfg.SettingsPath(); err != nil || p != "" {
		t.Fatalf("default settings path = %q, %v", p, err)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg.SettingsFile = "~/lofi/settings.json"
	p, err := cfg.SettingsPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(home, "lofi", "settings.json") {
		t.Fatalf("settings path = %q", p)
	}
}
