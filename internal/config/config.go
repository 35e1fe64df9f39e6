package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/windows"
)

const (
	DefaultFrameRate         = 60
	DefaultResizeSettleMS    = 200
	DefaultReconcileInterval = 5
	DefaultMinSide           = 150
	DefaultMaxSide           = 640
)

// Titles are the exact window titles used to find the widget's windows.
type Titles struct {
	Main      string `yaml:"main"`
	TrackInfo string `yaml:"track_info"`
	Settings  string `yaml:"settings"`
	About     string `yaml:"about"`
}

// Hotkeys are X11 key sequences in xgbutil keybind notation. An empty
// sequence disables the binding.
type Hotkeys struct {
	Settings    string `yaml:"settings"`
	About       string `yaml:"about"`
	ToggleOnTop string `yaml:"toggle_on_top"`
}

// DialogSize is the size a child dialog is given when it opens.
type DialogSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Dialogs holds the sizes of the settings and about dialogs.
type Dialogs struct {
	Settings DialogSize `yaml:"settings"`
	About    DialogSize `yaml:"about"`
}

// Config holds the application configuration.
type Config struct {
	Titles        Titles       `yaml:"titles"`
	TrackInfoGap  geometry.Gap `yaml:"track_info_gap"`
	MinSide       int          `yaml:"min_side"`
	MaxSide       int          `yaml:"max_side"`
	FrameRate     int          `yaml:"frame_rate"`
	NoMoveTargets []string     `yaml:"no_move_targets"`
	// ResizeSettleMS is how long the main window must keep its size before
	// a resize counts as finished.
	ResizeSettleMS int `yaml:"resize_settle_ms"`
	// ReconcileInterval is the period, in seconds, of the window re-scan
	// that catches missed client-list notifications.
	ReconcileInterval int     `yaml:"reconcile_interval"`
	SettingsFile      string  `yaml:"settings_file,omitempty"`
	LogLevel          string  `yaml:"log_level"`
	Hotkeys           Hotkeys `yaml:"hotkeys"`
	Dialogs           Dialogs `yaml:"dialogs"`
}

// ValidationError reports an invalid configuration value. Source is filled
// in by the loader when the value came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func DefaultConfig() *Config {
	return &Config{
		Titles: Titles{
			Main:      windows.LabelMain,
			TrackInfo: windows.LabelTrackInfo,
			Settings:  windows.LabelSettings,
			About:     windows.LabelAbout,
		},
		TrackInfoGap:      geometry.Gap{X: 10, Y: 10},
		MinSide:           DefaultMinSide,
		MaxSide:           DefaultMaxSide,
		FrameRate:         DefaultFrameRate,
		NoMoveTargets:     []string{"no-move"},
		ResizeSettleMS:    DefaultResizeSettleMS,
		ReconcileInterval: DefaultReconcileInterval,
		LogLevel:          "info",
		Hotkeys: Hotkeys{
			Settings:    "Mod4-Mod1-comma",
			About:       "",
			ToggleOnTop: "Mod4-Mod1-p",
		},
		Dialogs: Dialogs{
			Settings: DialogSize{Width: 400, Height: 570},
			About:    DialogSize{Width: 400, Height: 440},
		},
	}
}

// Labels returns the role to title mapping.
func (c *Config) Labels() windows.Labels {
	return windows.Labels{
		windows.RoleMain:      c.Titles.Main,
		windows.RoleTrackInfo: c.Titles.TrackInfo,
		windows.RoleSettings:  c.Titles.Settings,
		windows.RoleAbout:     c.Titles.About,
	}
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ResizeSettle returns resize_settle_ms as a duration.
func (c *Config) ResizeSettle() time.Duration {
	return time.Duration(c.ResizeSettleMS) * time.Millisecond
}

// ReconcileEvery returns reconcile_interval as a duration.
func (c *Config) ReconcileEvery() time.Duration {
	return time.Duration(c.ReconcileInterval) * time.Second
}

// SettingsPath returns settings_file with a leading ~ expanded, or "" when
// the default location should be used.
func (c *Config) SettingsPath() (string, error) {
	path := strings.TrimSpace(c.SettingsFile)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if err := c.Labels().Validate(); err != nil {
		return &ValidationError{Path: "titles", Err: err}
	}
	if c.TrackInfoGap.X < 0 || c.TrackInfoGap.Y < 0 {
		return &ValidationError{Path: "track_info_gap", Err: fmt.Errorf("track_info_gap values must be >= 0")}
	}
	if c.MinSide <= 0 {
		return &ValidationError{Path: "min_side", Err: fmt.Errorf("min_side must be > 0")}
	}
	if c.MaxSide < c.MinSide {
		return &ValidationError{Path: "max_side", Err: fmt.Errorf("max_side must be >= min_side (%d)", c.MinSide)}
	}
	if c.FrameRate < 1 || c.FrameRate > 240 {
		return &ValidationError{Path: "frame_rate", Err: fmt.Errorf("frame_rate must be between 1 and 240")}
	}
	for i, target := range c.NoMoveTargets {
		if strings.TrimSpace(target) == "" {
			return &ValidationError{Path: fmt.Sprintf("no_move_targets.%d", i), Err: fmt.Errorf("no_move_targets entries must not be empty")}
		}
	}
	if c.ResizeSettleMS < 0 {
		return &ValidationError{Path: "resize_settle_ms", Err: fmt.Errorf("resize_settle_ms must be >= 0")}
	}
	if c.ReconcileInterval < 1 {
		return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 1")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if err := validateDialog("dialogs.settings", c.Dialogs.Settings); err != nil {
		return err
	}
	if err := validateDialog("dialogs.about", c.Dialogs.About); err != nil {
		return err
	}
	return nil
}

func validateDialog(path string, size DialogSize) error {
	if size.Width <= 0 {
		return &ValidationError{Path: path + ".width", Err: fmt.Errorf("width must be > 0")}
	}
	if size.Height <= 0 {
		return &ValidationError{Path: path + ".height", Err: fmt.Errorf("height must be > 0")}
	}
	return nil
}

// SaveTo writes the configuration to path. Comments in an existing file are
// not preserved.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
