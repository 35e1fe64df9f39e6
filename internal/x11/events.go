package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WatchClientList calls fn whenever the window manager rewrites
// _NET_CLIENT_LIST, i.e. when a managed window appears or disappears.
// fn runs on the EventLoop goroutine.
func (c *Connection) WatchClientList(fn func()) error {
	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil || name != "_NET_CLIENT_LIST" {
			return
		}
		fn()
	}).Connect(c.XUtil, c.Root)
	return nil
}

// WatchGeometry calls fn for every ConfigureNotify on windowID. The event
// coordinates are parent-relative, so callers should re-read the bounds.
// fn runs on the EventLoop goroutine.
func (c *Connection) WatchGeometry(windowID xproto.Window, fn func(width, height int)) error {
	if err := xwindow.New(c.XUtil, windowID).Listen(xproto.EventMaskStructureNotify); err != nil {
		return fmt.Errorf("failed to listen on window %d: %w", windowID, err)
	}

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		fn(int(ev.Width), int(ev.Height))
	}).Connect(c.XUtil, windowID)
	return nil
}

// Unwatch removes every callback registered for windowID.
func (c *Connection) Unwatch(windowID xproto.Window) {
	xevent.Detach(c.XUtil, windowID)
}
