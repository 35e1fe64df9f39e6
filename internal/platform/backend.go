package platform

import "github.com/1broseidon/coverdock/internal/geometry"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect = geometry.Rect

// Display describes a physical display and its usable work area.
type Display = geometry.Display

// Window contains metadata and geometry for a window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	// TopLevelWindows lists managed windows that are not transient for
	// another window.
	TopLevelWindows() ([]Window, error)
	// ChildWindows lists managed windows transient for parent.
	ChildWindows(parent WindowID) ([]Window, error)
	Bounds(windowID WindowID) (Rect, error)
	MoveResize(windowID WindowID, bounds Rect) error
	CursorPosition() (geometry.Point, error)
	SetAlwaysOnTop(windowID WindowID, onTop bool) error
	SetSkipTaskbar(windowID WindowID, skip bool) error
}

// Watcher delivers window-system notifications. Callbacks run on the
// backend's event goroutine, never on the caller's.
type Watcher interface {
	// WatchClients fires when a managed window appears or disappears.
	WatchClients(fn func()) error
	// WatchGeometry fires on every size or position change of windowID.
	WatchGeometry(windowID WindowID, fn func(width, height int)) error
	Unwatch(windowID WindowID)
}
