//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var (
	_ Backend = (*LinuxBackend)(nil)
	_ Watcher = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops EventLoop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays sorted by ID.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: m.Bounds,
			Usable: m.Usable,
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// TopLevelWindows lists managed windows that have no transient parent.
func (b *LinuxBackend) TopLevelWindows() ([]Window, error) {
	return b.listClients(func(_ xproto.Window, hasParent bool) bool {
		return !hasParent
	})
}

// ChildWindows lists managed windows transient for parent.
func (b *LinuxBackend) ChildWindows(parent WindowID) ([]Window, error) {
	return b.listClients(func(p xproto.Window, hasParent bool) bool {
		return hasParent && WindowID(p) == parent
	})
}

func (b *LinuxBackend) listClients(keep func(parent xproto.Window, hasParent bool) bool) ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientList()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		if !conn.IsNormalWindow(windowID) {
			continue
		}
		parent, hasParent := conn.TransientFor(windowID)
		if !keep(parent, hasParent) {
			continue
		}

		// Windows can vanish between the client list read and this query.
		rect, err := conn.WindowBounds(windowID)
		if err != nil {
			continue
		}

		windows = append(windows, Window{
			ID:     WindowID(windowID),
			PID:    conn.WindowPID(windowID),
			AppID:  conn.WindowClass(windowID),
			Title:  conn.WindowTitle(windowID),
			Bounds: rect,
		})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})

	return windows, nil
}

// Bounds returns the window's client area in root coordinates.
func (b *LinuxBackend) Bounds(windowID WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	return conn.WindowBounds(xproto.Window(windowID))
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(windowID), bounds)
}

// CursorPosition returns the pointer position in root coordinates.
func (b *LinuxBackend) CursorPosition() (geometry.Point, error) {
	conn, err := b.connection()
	if err != nil {
		return geometry.Point{}, err
	}
	return conn.PointerPosition()
}

// SetAlwaysOnTop toggles _NET_WM_STATE_ABOVE. Windows kept on top are also
// made visible on every desktop.
func (b *LinuxBackend) SetAlwaysOnTop(windowID WindowID, onTop bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetAbove(xproto.Window(windowID), onTop)
}

// SetSkipTaskbar toggles taskbar and pager visibility.
func (b *LinuxBackend) SetSkipTaskbar(windowID WindowID, skip bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetSkipTaskbar(xproto.Window(windowID), skip)
}

// WatchClients fires fn when _NET_CLIENT_LIST changes.
func (b *LinuxBackend) WatchClients(fn func()) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WatchClientList(fn)
}

// WatchGeometry fires fn on every ConfigureNotify of windowID.
func (b *LinuxBackend) WatchGeometry(windowID WindowID, fn func(width, height int)) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WatchGeometry(xproto.Window(windowID), fn)
}

// Unwatch drops all callbacks for windowID.
func (b *LinuxBackend) Unwatch(windowID WindowID) {
	if conn, err := b.connection(); err == nil {
		conn.Unwatch(xproto.Window(windowID))
	}
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
