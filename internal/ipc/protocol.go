package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/settings"
)

// Kind names a message on the channel between the daemon and its clients.
type Kind string

// Requests sent to the daemon.
const (
	CommandWindowMoving    Kind = "WINDOW_MOVING"
	CommandWindowMoved     Kind = "WINDOW_MOVED"
	CommandSettingsChanged Kind = "SETTINGS_CHANGED"
	CommandUpdateSettings  Kind = "UPDATE_SETTINGS"
	CommandWindowResizing  Kind = "WINDOW_RESIZING"
	CommandShowSettings    Kind = "SHOW_SETTINGS"
	CommandShowAbout       Kind = "SHOW_ABOUT"
	CommandSubscribe       Kind = "SUBSCRIBE"
	CommandGetStatus       Kind = "GET_STATUS"
	CommandGetMonitors     Kind = "GET_MONITORS"
	CommandReload          Kind = "RELOAD"
)

// Events streamed to subscribers.
const (
	EventWindowMoved     Kind = "WINDOW_MOVED"
	EventWindowResized   Kind = "WINDOW_RESIZED"
	EventSideChanged     Kind = "SIDE_CHANGED"
	EventWindowReady     Kind = "WINDOW_READY"
	EventShowSettings    Kind = "SHOW_SETTINGS"
	EventShowAbout       Kind = "SHOW_ABOUT"
	EventSettingsChanged Kind = "SETTINGS_CHANGED"
)

// Request represents an IPC request from client to server
type Request struct {
	Command Kind            `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Event is a notification pushed to subscribed connections.
type Event struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MovingPayload is a pointer press on the main window. MouseX and MouseY are
// relative to the window's top-left corner.
type MovingPayload struct {
	MouseX int    `json:"mouse_x"`
	MouseY int    `json:"mouse_y"`
	Button int    `json:"button"`
	Target string `json:"target,omitempty"`
}

// PointerUpPayload is a pointer release. A missing payload means the
// primary button.
type PointerUpPayload struct {
	Button int `json:"button"`
}

// SidePayload reports which half of its display the main window is on.
type SidePayload struct {
	IsOnLeft bool `json:"is_on_left"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool              `json:"daemon_running"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Attached      bool              `json:"attached"`
	MainWindow    uint32            `json:"main_window,omitempty"`
	State         string            `json:"state"`
	Bounds        *geometry.Rect    `json:"bounds,omitempty"`
	IsOnLeft      bool              `json:"is_on_left"`
	TrackInfoOpen bool              `json:"track_info_open"`
	Settings      settings.Settings `json:"settings"`
	SettingsPath  string            `json:"settings_path,omitempty"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID     int           `json:"id"`
	Name   string        `json:"name"`
	X      int           `json:"x"`
	Y      int           `json:"y"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Usable geometry.Rect `json:"usable"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// MonitorsFromDisplays converts displays into their wire form.
func MonitorsFromDisplays(displays []geometry.Display) MonitorsData {
	infos := make([]MonitorInfo, len(displays))
	for i, d := range displays {
		infos[i] = MonitorInfo{
			ID:     d.ID,
			Name:   d.Name,
			X:      d.Bounds.X,
			Y:      d.Bounds.Y,
			Width:  d.Bounds.Width,
			Height: d.Bounds.Height,
			Usable: d.Usable,
		}
	}
	return MonitorsData{Monitors: infos}
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// NewEvent creates an event with an optional payload.
func NewEvent(kind Kind, payload interface{}) (*Event, error) {
	ev := &Event{Kind: kind}
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
		}
		ev.Payload = bytes
	}
	return ev, nil
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s event has no payload", e.Kind)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", e.Kind, err)
	}
	return nil
}
