package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/coverdock/internal/geometry"
)

// Monitor represents a physical display. Usable excludes the space reserved
// by docks and panels.
type Monitor struct {
	ID     int
	Name   string
	Bounds geometry.Rect
	Usable geometry.Rect
}

// GetMonitors retrieves all active monitors using XRandR. When RandR reports
// no active CRTC the root window is returned as a single monitor.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		bounds := geometry.Rect{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			Bounds: bounds,
			Usable: bounds,
		})
	}

	if len(monitors) == 0 {
		root, err := c.rootGeometry()
		if err != nil {
			return nil, err
		}
		monitors = append(monitors, Monitor{Name: "root", Bounds: root, Usable: root})
	}

	c.applyUsableAreas(monitors)
	return monitors, nil
}

func (c *Connection) rootGeometry() (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return geometry.Rect{Width: int(geom.Width), Height: int(geom.Height)}, nil
}

// applyUsableAreas shrinks each monitor's Usable rect by the dock struts that
// touch it. When no dock publishes struts, the EWMH work area of the current
// desktop is intersected instead.
func (c *Connection) applyUsableAreas(monitors []Monitor) {
	root, err := c.rootGeometry()
	if err != nil {
		return
	}
	struts := c.dockStruts(root.Width, root.Height)

	if len(struts) > 0 {
		for i := range monitors {
			var acc dockStruts
			for j := range struts {
				updateStrutsForMonitor(monitors[i].Bounds, root.Width, root.Height, &struts[j], &acc)
			}
			monitors[i].Usable = shrink(monitors[i].Bounds, acc)
		}
		return
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]
	area := geometry.Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}
	for i := range monitors {
		if usable := monitors[i].Bounds.Intersection(area); usable.Valid() {
			monitors[i].Usable = usable
		}
	}
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

// dockStruts collects the strut reservations of every dock window. Docks that
// only set _NET_WM_STRUT are widened to full-edge partial struts.
func (c *Connection) dockStruts(rootWidth, rootHeight int) []ewmh.WmStrutPartial {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var out []ewmh.WmStrutPartial
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil {
			continue
		}

		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			out = append(out, *sp)
			continue
		}

		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			out = append(out, ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftStartY:   0,
				LeftEndY:     uint(rootHeight - 1),
				RightStartY:  0,
				RightEndY:    uint(rootHeight - 1),
				TopStartX:    0,
				TopEndX:      uint(rootWidth - 1),
				BottomStartX: 0,
				BottomEndX:   uint(rootWidth - 1),
			})
		}
	}
	return out
}

func shrink(r geometry.Rect, s dockStruts) geometry.Rect {
	r.X += s.left
	r.Y += s.top
	r.Width -= s.left + s.right
	r.Height -= s.top + s.bottom
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}

func updateStrutsForMonitor(mon geometry.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		strip := spanRect(int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		if isect := mon.Intersection(strip); isect.Valid() {
			acc.top = max(acc.top, isect.Height)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		strip := spanRect(int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		if isect := mon.Intersection(strip); isect.Valid() {
			acc.bottom = max(acc.bottom, isect.Height)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		strip := spanRect(0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		if isect := mon.Intersection(strip); isect.Valid() {
			acc.left = max(acc.left, isect.Width)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		strip := spanRect(rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		if isect := mon.Intersection(strip); isect.Valid() {
			acc.right = max(acc.right, isect.Width)
		}
	}
}

func spanRect(x1, y1, x2, y2 int) geometry.Rect {
	return geometry.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
