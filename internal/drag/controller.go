// Package drag moves the main widget window under the pointer and keeps the
// track-info satellite docked after every bounds change.
//
// The controller is not safe for concurrent use. All methods, including the
// frame callbacks it schedules, must run on the daemon's event loop.
package drag

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/loop"
	"github.com/1broseidon/coverdock/internal/platform"
	"github.com/1broseidon/coverdock/internal/settings"
	"github.com/1broseidon/coverdock/internal/stabilizer"
	"github.com/1broseidon/coverdock/internal/windows"
)

// Host is the window system as seen by the controller.
type Host interface {
	Displays() ([]geometry.Display, error)
	Bounds(windowID platform.WindowID) (geometry.Rect, error)
	MoveResize(windowID platform.WindowID, bounds geometry.Rect) error
	CursorPosition() (geometry.Point, error)
	SetAlwaysOnTop(windowID platform.WindowID, onTop bool) error
	SetSkipTaskbar(windowID platform.WindowID, skip bool) error
}

// Scheduler runs callbacks once per rendered frame.
type Scheduler interface {
	RequestFrame(fn func()) loop.FrameID
	CancelFrame(id loop.FrameID)
}

// Repositioner docks the satellite next to the main window.
type Repositioner interface {
	Reposition(main platform.WindowID, mainBounds geometry.Rect, display geometry.Display) error
}

// Finder resolves child window roles.
type Finder interface {
	FindByRole(root platform.WindowID, role windows.Role) (platform.Window, bool, error)
}

// Size is a width and height pair.
type Size struct {
	Width  int
	Height int
}

// Options carries everything the controller needs. There is no package
// state; each controller is fully described by its Options.
type Options struct {
	Host       Host
	Scheduler  Scheduler
	Positioner Repositioner
	Finder     Finder
	Observer   Observer
	Logger     *slog.Logger

	// NoMoveTargets lists element classes that never start a gesture.
	NoMoveTargets []string
	MinSide       int
	MaxSide       int
	// Dialogs holds the size of child dialogs centered over the main window.
	Dialogs map[windows.Role]Size
}

// Controller owns the move gesture and all main-window bounds changes.
type Controller struct {
	host      Host
	scheduler Scheduler
	satellite Repositioner
	finder    Finder
	observer  Observer
	logger    *slog.Logger

	noMove  map[string]struct{}
	minSide int
	maxSide int
	dialogs map[windows.Role]Size

	main     platform.WindowID
	attached bool

	state        State
	session      *stabilizer.Session
	grabX, grabY int
	frame        loop.FrameID
	framePending bool
	lastSide     int

	// resizeDeferred is set when a resize settled mid-gesture; the square
	// clamp runs when the gesture ends.
	resizeDeferred bool
}

// NewController creates a controller in the idle state with no main window.
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = Observers(nil)
	}
	minSide := opts.MinSide
	if minSide <= 0 {
		minSide = settings.MinSideLength
	}
	maxSide := opts.MaxSide
	if maxSide <= 0 {
		maxSide = settings.MaxSideLength
	}

	c := &Controller{
		host:      opts.Host,
		scheduler: opts.Scheduler,
		satellite: opts.Positioner,
		finder:    opts.Finder,
		observer:  observer,
		logger:    logger,
		minSide:   minSide,
		maxSide:   maxSide,
		dialogs:   opts.Dialogs,
	}
	c.SetNoMoveTargets(opts.NoMoveTargets)
	return c
}

// SetNoMoveTargets replaces the excluded element classes.
func (c *Controller) SetNoMoveTargets(targets []string) {
	c.noMove = make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if t != "" {
			c.noMove[t] = struct{}{}
		}
	}
}

// SetSideLimits replaces the square side limits.
func (c *Controller) SetSideLimits(minSide, maxSide int) {
	c.minSide = minSide
	c.maxSide = maxSide
}

// Attach sets the main window. Any gesture on a previous window is ended.
func (c *Controller) Attach(main platform.WindowID) {
	if c.attached && c.main == main {
		return
	}
	c.endGesture(false)
	c.main = main
	c.attached = true
	c.lastSide = 0
}

// Detach forgets the main window, ending any gesture in progress.
func (c *Controller) Detach() {
	c.endGesture(false)
	c.attached = false
	c.main = 0
}

// MainWindow returns the attached main window.
func (c *Controller) MainWindow() (platform.WindowID, bool) {
	return c.main, c.attached
}

// MainBounds returns the live bounds of the attached main window.
func (c *Controller) MainBounds() (geometry.Rect, error) {
	if !c.attached {
		return geometry.Rect{}, fmt.Errorf("main window is not attached")
	}
	return c.host.Bounds(c.main)
}

// State returns the current gesture state.
func (c *Controller) State() State {
	return c.state
}

// PointerDown starts a gesture for a primary-button press on a draggable
// element. It reports whether the press was accepted.
func (c *Controller) PointerDown(ev PointerEvent) bool {
	if !c.attached || ev.Button != PrimaryButton {
		return false
	}
	if _, excluded := c.noMove[ev.Target]; excluded {
		return false
	}

	if c.state == StateDragging {
		// Views repeat the press on every rendered frame. Only the grab
		// offset changes; the pending frame keeps its place so ticks are
		// never starved by the message rate.
		c.grabX = ev.LocalX
		c.grabY = ev.LocalY
		if !c.framePending {
			c.requestFrame()
		}
		return true
	}

	bounds, err := c.host.Bounds(c.main)
	if err != nil {
		c.logger.Warn("drag start skipped: cannot read main window bounds",
			"window_id", c.main, "error", err)
		return false
	}
	c.cancelFrame()
	c.grabX = ev.LocalX
	c.grabY = ev.LocalY
	c.session = stabilizer.Begin(bounds)
	c.state = StateDragging
	c.resizeDeferred = false
	c.logger.Debug("drag started", "grab_x", c.grabX, "grab_y", c.grabY,
		"width", bounds.Width, "height", bounds.Height)

	c.requestFrame()
	return true
}

// PointerUp ends the gesture on a primary-button release. It reports whether
// a gesture was ended.
func (c *Controller) PointerUp(button int) bool {
	if button != PrimaryButton || c.state != StateDragging {
		return false
	}
	c.endGesture(true)
	return true
}

func (c *Controller) endGesture(notify bool) {
	c.cancelFrame()
	if c.state != StateDragging {
		return
	}
	stabilizer.End(c.session)
	c.session = nil
	c.state = StateIdle
	c.logger.Debug("drag ended")
	deferred := c.resizeDeferred
	c.resizeDeferred = false
	if notify {
		c.observer.MoveEnded()
		if deferred {
			c.ResizeComplete()
		}
	}
}

func (c *Controller) requestFrame() {
	c.frame = c.scheduler.RequestFrame(c.tick)
	c.framePending = true
}

func (c *Controller) cancelFrame() {
	if !c.framePending {
		return
	}
	c.scheduler.CancelFrame(c.frame)
	c.framePending = false
}

// tick moves the window to the cursor minus the grab offset, then schedules
// the next frame. A new frame is requested only after this one's changes
// are committed, so at most one tick is ever pending.
func (c *Controller) tick() {
	c.framePending = false
	if c.state != StateDragging {
		return
	}

	cursor, err := c.host.CursorPosition()
	if err != nil {
		c.logger.Warn("drag tick skipped: cannot query pointer", "error", err)
		c.requestFrame()
		return
	}

	next := c.session.Next(cursor.X-c.grabX, cursor.Y-c.grabY)
	if err := c.host.MoveResize(c.main, next); err != nil {
		c.logger.Warn("drag tick skipped: cannot move main window",
			"window_id", c.main, "error", err)
		c.requestFrame()
		return
	}

	c.reposition(next)
	c.observer.WindowMoved(next)
	c.requestFrame()
}

// Resizing handles an intermediate OS resize step. Live bounds are the
// authority during a resize, so only the satellite moves.
func (c *Controller) Resizing() {
	if !c.attached {
		return
	}
	bounds, err := c.host.Bounds(c.main)
	if err != nil {
		c.logger.Warn("resize step skipped", "window_id", c.main, "error", err)
		return
	}
	c.reposition(bounds)
}

// ResizeComplete snaps the main window to a square of side min(width,
// height), clamped to the side limits, and reports the new side.
func (c *Controller) ResizeComplete() {
	if !c.attached {
		return
	}
	if c.state == StateDragging {
		// The drag session owns the size until the gesture ends.
		c.resizeDeferred = true
		return
	}

	bounds, err := c.host.Bounds(c.main)
	if err != nil {
		c.logger.Warn("resize completion skipped", "window_id", c.main, "error", err)
		return
	}

	side := geometry.SquareSide(bounds.Width, bounds.Height, c.minSide, c.maxSide)
	square := geometry.Rect{X: bounds.X, Y: bounds.Y, Width: side, Height: side}
	if square != bounds {
		if err := c.host.MoveResize(c.main, square); err != nil {
			c.logger.Warn("resize completion skipped: cannot commit square bounds",
				"window_id", c.main, "side", side, "error", err)
			return
		}
	} else if side == c.lastSide {
		c.reposition(bounds)
		return
	}

	c.lastSide = side
	c.observer.WindowResized(side)
	c.reposition(square)
}

// ApplySettings applies the window-related settings: stacking, taskbar
// visibility and bounds. The -1,-1 position centers the window on its
// current display.
func (c *Controller) ApplySettings(s settings.Settings) error {
	if !c.attached {
		return fmt.Errorf("main window is not attached")
	}
	c.applyFlags(s)

	side := geometry.ClampSide(s.Size, c.minSide, c.maxSide)
	target := geometry.Rect{X: s.X, Y: s.Y, Width: side, Height: side}
	if s.IsCentered() {
		centered, err := c.centeredBounds(side)
		if err != nil {
			return err
		}
		target = centered
	}

	if err := c.host.MoveResize(c.main, target); err != nil {
		return fmt.Errorf("failed to apply window bounds: %w", err)
	}
	if c.state == StateDragging {
		// Keep following the cursor, but at the newly applied size.
		c.session = stabilizer.Begin(target)
	}
	c.lastSide = side
	c.reposition(target)
	return nil
}

// Ready performs the initial placement once the main window is shown and
// reports the initial side to observers.
func (c *Controller) Ready(s settings.Settings) error {
	if !c.attached {
		return fmt.Errorf("main window is not attached")
	}

	bounds, err := c.host.Bounds(c.main)
	if err != nil {
		return fmt.Errorf("failed to read main window bounds: %w", err)
	}
	if s.IsCentered() {
		centered, err := c.centeredBounds(bounds.Width)
		if err != nil {
			return err
		}
		if err := c.host.MoveResize(c.main, centered); err != nil {
			return fmt.Errorf("failed to center main window: %w", err)
		}
		bounds = centered
	}
	c.applyFlags(s)

	displays, err := c.host.Displays()
	if err != nil {
		return fmt.Errorf("failed to query displays: %w", err)
	}
	display, ok := geometry.DisplayMatching(displays, bounds)
	if !ok {
		return fmt.Errorf("no display available")
	}
	isOnLeft := geometry.IsOnLeftSide(display, bounds.X, bounds.Width)
	c.lastSide = bounds.Width
	c.observer.WindowReady(isOnLeft)
	c.reposition(bounds)
	return nil
}

// ChildOpened places a newly mapped child window of the main window:
// track-info is docked, settings and about dialogs are centered over the
// main window. Windows that are not children of main are ignored.
func (c *Controller) ChildOpened(id platform.WindowID) {
	if !c.attached {
		return
	}
	for _, role := range []windows.Role{windows.RoleTrackInfo, windows.RoleSettings, windows.RoleAbout} {
		w, ok, err := c.finder.FindByRole(c.main, role)
		if err != nil {
			c.logger.Warn("child window lookup failed", "role", role, "error", err)
			return
		}
		if !ok || w.ID != id {
			continue
		}

		bounds, err := c.host.Bounds(c.main)
		if err != nil {
			c.logger.Warn("child placement skipped", "role", role, "error", err)
			return
		}

		if role == windows.RoleTrackInfo {
			c.reposition(bounds)
			return
		}

		size, ok := c.dialogs[role]
		if !ok {
			size = Size{Width: w.Bounds.Width, Height: w.Bounds.Height}
		}
		target := geometry.CenterOver(bounds, size.Width, size.Height)
		if err := c.host.MoveResize(id, target); err != nil {
			c.logger.Warn("child placement skipped", "role", role, "window_id", id, "error", err)
			return
		}
		if err := c.host.SetAlwaysOnTop(id, true); err != nil {
			c.logger.Debug("cannot raise child window", "role", role, "error", err)
		}
		c.logger.Debug("child window centered", "role", role, "window_id", id)
		return
	}
}

// Reposition re-docks the satellite against the main window's live bounds.
func (c *Controller) Reposition() {
	if !c.attached {
		return
	}
	bounds, err := c.host.Bounds(c.main)
	if err != nil {
		c.logger.Warn("reposition skipped", "window_id", c.main, "error", err)
		return
	}
	c.reposition(bounds)
}

// SetAlwaysOnTop changes only the main window's stacking.
func (c *Controller) SetAlwaysOnTop(onTop bool) error {
	if !c.attached {
		return fmt.Errorf("main window is not attached")
	}
	return c.host.SetAlwaysOnTop(c.main, onTop)
}

func (c *Controller) reposition(bounds geometry.Rect) {
	displays, err := c.host.Displays()
	if err != nil {
		c.logger.Warn("satellite reposition skipped: cannot query displays", "error", err)
		return
	}
	display, ok := geometry.NearestDisplay(displays, geometry.Point{X: bounds.X, Y: bounds.Y})
	if !ok {
		c.logger.Warn("satellite reposition skipped: no displays")
		return
	}
	if err := c.satellite.Reposition(c.main, bounds, display); err != nil {
		c.logger.Warn("satellite reposition failed", "error", err)
	}
}

func (c *Controller) applyFlags(s settings.Settings) {
	if err := c.host.SetAlwaysOnTop(c.main, s.IsAlwaysOnTop); err != nil {
		c.logger.Warn("cannot set always-on-top", "window_id", c.main, "error", err)
	}
	if err := c.host.SetSkipTaskbar(c.main, !s.IsVisibleInTaskbar); err != nil {
		c.logger.Warn("cannot set taskbar visibility", "window_id", c.main, "error", err)
	}
}

func (c *Controller) centeredBounds(side int) (geometry.Rect, error) {
	current, err := c.host.Bounds(c.main)
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to read main window bounds: %w", err)
	}
	displays, err := c.host.Displays()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to query displays: %w", err)
	}
	display, ok := geometry.DisplayMatching(displays, current)
	if !ok {
		return geometry.Rect{}, fmt.Errorf("no display available")
	}
	area := display.Usable
	if !area.Valid() {
		area = display.Bounds
	}
	return geometry.CenterIn(area, side, side), nil
}
