package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/coverdock/internal/geometry"
)

// stickyDesktop is the _NET_WM_DESKTOP value for "all desktops".
const stickyDesktop = 0xFFFFFFFF

// MoveResizeWindow moves and resizes a window to the specified geometry. It
// fails when the window no longer exists or neither the window manager
// request nor a direct configure could be sent.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, bounds geometry.Rect) error {
	return moveResize(windowID, moveResizeSteps{
		check: func() error {
			_, err := xwindow.New(c.XUtil, windowID).Geometry()
			return err
		},
		// A maximized window ignores move requests on most window managers.
		unmaximize: func() error { return c.unmaximizeWindow(windowID) },
		request: func() error {
			return ewmh.MoveresizeWindow(c.XUtil, windowID,
				bounds.X, bounds.Y, bounds.Width, bounds.Height)
		},
		configure: func() error {
			mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
				xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
			values := []uint32{uint32(bounds.X), uint32(bounds.Y), uint32(bounds.Width), uint32(bounds.Height)}
			return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check()
		},
	})
}

type moveResizeSteps struct {
	check      func() error
	unmaximize func() error
	request    func() error
	configure  func() error
}

func moveResize(windowID xproto.Window, steps moveResizeSteps) error {
	if err := steps.check(); err != nil {
		return fmt.Errorf("window %d is not available: %w", windowID, err)
	}
	// Windows without _NET_WM_STATE are fine to move as they are.
	_ = steps.unmaximize()

	reqErr := steps.request()
	if reqErr == nil {
		return nil
	}
	// Fallback to direct window manipulation
	if err := steps.configure(); err != nil {
		return fmt.Errorf("failed to move window %d: %v; direct configure: %w", windowID, reqErr, err)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// WindowBounds returns the window's client area in root coordinates.
func (c *Connection) WindowBounds(windowID xproto.Window) (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to get geometry of window %d: %w", windowID, err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to translate coordinates of window %d: %w", windowID, err)
	}

	return geometry.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// PointerPosition returns the pointer position in root coordinates.
func (c *Connection) PointerPosition() (geometry.Point, error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geometry.Point{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return geometry.Point{X: int(pointer.RootX), Y: int(pointer.RootY)}, nil
}

// SetWindowState adds or removes a single _NET_WM_STATE atom.
func (c *Connection) SetWindowState(windowID xproto.Window, state string, enabled bool) error {
	action := ewmh.StateRemove
	if enabled {
		action = ewmh.StateAdd
	}
	if err := ewmh.WmStateReq(c.XUtil, windowID, action, state); err != nil {
		return fmt.Errorf("failed to set %s on window %d: %w", state, windowID, err)
	}
	return nil
}

// SetAbove keeps the window above normal windows and on every desktop, the
// way a floating widget is expected to behave.
func (c *Connection) SetAbove(windowID xproto.Window, above bool) error {
	if err := c.SetWindowState(windowID, "_NET_WM_STATE_ABOVE", above); err != nil {
		return err
	}
	if !above {
		return nil
	}
	if err := c.SetWindowDesktop(windowID, stickyDesktop); err != nil {
		return fmt.Errorf("failed to make window %d sticky: %w", windowID, err)
	}
	return nil
}

// SetSkipTaskbar hides the window from taskbars and pagers.
func (c *Connection) SetSkipTaskbar(windowID xproto.Window, skip bool) error {
	if err := c.SetWindowState(windowID, "_NET_WM_STATE_SKIP_TASKBAR", skip); err != nil {
		return err
	}
	return c.SetWindowState(windowID, "_NET_WM_STATE_SKIP_PAGER", skip)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}
