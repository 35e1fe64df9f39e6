// Package settings holds the widget settings shared by the view and the
// daemon, and the JSON file they are persisted to.
package settings

// Version is written into saved settings. A stored file with a different
// version is discarded in favor of defaults.
var Version = "1"

// PositionUnset is the x/y sentinel meaning "center on screen".
const PositionUnset = -1

// Side length limits for the square main window.
const (
	MinSideLength = 150
	MaxSideLength = 640
)

// VisualizationType selects the visualizer mode.
type VisualizationType int

const (
	VisualizationNone VisualizationType = iota
	VisualizationSmall
	VisualizationBig
)

// Settings is the full widget settings object. JSON keys match the view's
// settings store so a SETTINGS_CHANGED payload can be forwarded unchanged.
type Settings struct {
	Version                     string            `json:"version"`
	X                           int               `json:"x"`
	Y                           int               `json:"y"`
	Size                        int               `json:"size"`
	IsAlwaysOnTop               bool              `json:"isAlwaysOnTop"`
	IsVisibleInTaskbar          bool              `json:"isVisibleInTaskbar"`
	IsAlwaysShowTrackInfo       bool              `json:"isAlwaysShowTrackInfo"`
	IsAlwaysShowSongProgress    bool              `json:"isAlwaysShowSongProgress"`
	IsDisplayVolumeChange       bool              `json:"isDisplayVolumeChange"`
	BarThickness                int               `json:"barThickness"`
	BarColor                    string            `json:"barColor"`
	VolumeIncrement             int               `json:"volumeIncrement"`
	VisualizationID             int               `json:"visualizationId"`
	VisualizationType           VisualizationType `json:"visualizationType"`
	VisualizerOpacity           int               `json:"visualizerOpacity"`
	IsDebug                     bool              `json:"isDebug"`
	IsUsingHardwareAcceleration bool              `json:"isUsingHardwareAcceleration"`
}

// Default returns the settings used on first start.
func Default() Settings {
	return Settings{
		Version:                     Version,
		X:                           PositionUnset,
		Y:                           PositionUnset,
		Size:                        MinSideLength,
		IsAlwaysOnTop:               true,
		IsVisibleInTaskbar:          true,
		BarThickness:                2,
		BarColor:                    "#00FF00",
		VolumeIncrement:             5,
		VisualizationType:           VisualizationNone,
		VisualizerOpacity:           100,
		IsUsingHardwareAcceleration: true,
	}
}

// IsCentered reports whether the position is the "center on screen"
// sentinel.
func (s Settings) IsCentered() bool {
	return s.X == PositionUnset && s.Y == PositionUnset
}

// WithPosition returns a copy with x and y replaced.
func (s Settings) WithPosition(x, y int) Settings {
	s.X = x
	s.Y = y
	return s
}

// WithSize returns a copy with the side length replaced.
func (s Settings) WithSize(size int) Settings {
	s.Size = size
	return s
}
