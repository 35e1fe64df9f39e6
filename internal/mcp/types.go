package mcp

import (
	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/ipc"
)

// GetWidgetStateInput is the input for the get_widget_state tool.
type GetWidgetStateInput struct{}

// WidgetState is the output for the get_widget_state tool.
type WidgetState struct {
	Attached           bool           `json:"attached"`
	Dragging           bool           `json:"dragging"`
	Bounds             *geometry.Rect `json:"bounds,omitempty"`
	IsOnLeft           bool           `json:"is_on_left"`
	TrackInfoOpen      bool           `json:"track_info_open"`
	Size               int            `json:"size"`
	Centered           bool           `json:"centered"`
	IsAlwaysOnTop      bool           `json:"is_always_on_top"`
	IsVisibleInTaskbar bool           `json:"is_visible_in_taskbar"`
	SettingsPath       string         `json:"settings_path,omitempty"`
	UptimeSeconds      int64          `json:"uptime_seconds"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []ipc.MonitorInfo `json:"monitors"`
}

// MoveWidgetInput is the input for the move_widget tool.
type MoveWidgetInput struct {
	X      int  `json:"x,omitempty" jsonschema:"Screen x coordinate of the widget's top-left corner; may be negative on monitors left of the primary"`
	Y      int  `json:"y,omitempty" jsonschema:"Screen y coordinate of the widget's top-left corner; may be negative on monitors above the primary"`
	Center bool `json:"center,omitempty" jsonschema:"Center the widget on its monitor; x and y are ignored"`
}

// ResizeWidgetInput is the input for the resize_widget tool.
type ResizeWidgetInput struct {
	Size int `json:"size" jsonschema:"Side length in pixels"`
}

// SetAlwaysOnTopInput is the input for the set_always_on_top tool.
type SetAlwaysOnTopInput struct {
	Enabled bool `json:"enabled" jsonschema:"true keeps the widget above other windows"`
}

// ShowPanelInput is the input for the show_panel tool.
type ShowPanelInput struct {
	Panel string `json:"panel" jsonschema:"Dialog to open: settings or about"`
}

// SettingsOutput reports the settings saved by a tool.
type SettingsOutput struct {
	X                  int  `json:"x"`
	Y                  int  `json:"y"`
	Size               int  `json:"size"`
	IsAlwaysOnTop      bool `json:"is_always_on_top"`
	IsVisibleInTaskbar bool `json:"is_visible_in_taskbar"`
}

// ShowPanelOutput is the output for the show_panel tool.
type ShowPanelOutput struct {
	Panel string `json:"panel"`
}
