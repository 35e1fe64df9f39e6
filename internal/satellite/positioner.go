// Package satellite keeps the track-info window docked beside the main
// widget window, flipping sides as the widget crosses a display's midline.
package satellite

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/platform"
	"github.com/1broseidon/coverdock/internal/windows"
)

// DefaultGap is the offset between the main window and the track-info window.
var DefaultGap = geometry.Gap{X: 10, Y: 10}

// Finder resolves a role to a live child window.
type Finder interface {
	FindByRole(root platform.WindowID, role windows.Role) (platform.Window, bool, error)
}

// Mover commits window bounds.
type Mover interface {
	MoveResize(windowID platform.WindowID, bounds geometry.Rect) error
}

// SideNotifier receives the side the main window is on after every
// reposition.
type SideNotifier interface {
	SideChanged(isOnLeft bool)
}

// Positioner places the track-info window relative to the main window.
type Positioner struct {
	finder   Finder
	mover    Mover
	notifier SideNotifier
	gap      geometry.Gap
	logger   *slog.Logger
}

// NewPositioner creates a positioner. A nil logger uses slog.Default.
func NewPositioner(finder Finder, mover Mover, notifier SideNotifier, gap geometry.Gap, logger *slog.Logger) *Positioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Positioner{
		finder:   finder,
		mover:    mover,
		notifier: notifier,
		gap:      gap,
		logger:   logger,
	}
}

// SetGap replaces the gap used for subsequent repositions.
func (p *Positioner) SetGap(gap geometry.Gap) {
	p.gap = gap
}

// Reposition notifies the side of main on display and, if the track-info
// window is open, moves it next to main. The side notification is sent even
// when no track-info window exists so the view's layout is already correct
// when one opens. Only the satellite's position changes.
func (p *Positioner) Reposition(main platform.WindowID, mainBounds geometry.Rect, display geometry.Display) error {
	isOnLeft := geometry.IsOnLeftSide(display, mainBounds.X, mainBounds.Width)
	if p.notifier != nil {
		p.notifier.SideChanged(isOnLeft)
	}

	sat, ok, err := p.finder.FindByRole(main, windows.RoleTrackInfo)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	target := geometry.SatelliteTarget(mainBounds, sat.Bounds, isOnLeft, p.gap)
	if target == sat.Bounds {
		return nil
	}
	if err := p.mover.MoveResize(sat.ID, target); err != nil {
		return fmt.Errorf("failed to move track-info window %d: %w", sat.ID, err)
	}
	p.logger.Debug("track-info repositioned",
		"window_id", sat.ID,
		"x", target.X,
		"y", target.Y,
		"is_on_left", isOnLeft)
	return nil
}
