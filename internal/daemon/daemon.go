// Package daemon wires the widget's window policy together: it tracks the
// main window and its children, feeds window-system and IPC events into the
// drag controller, and keeps the settings file in step with the window.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/coverdock/internal/config"
	"github.com/1broseidon/coverdock/internal/drag"
	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/ipc"
	"github.com/1broseidon/coverdock/internal/loop"
	"github.com/1broseidon/coverdock/internal/platform"
	"github.com/1broseidon/coverdock/internal/satellite"
	"github.com/1broseidon/coverdock/internal/settings"
	"github.com/1broseidon/coverdock/internal/windows"
)

// Options configures a Daemon.
type Options struct {
	Config  *config.Config
	Backend platform.Backend
	// Watcher delivers client-list and geometry notifications. When nil the
	// daemon relies on the reconciler alone.
	Watcher platform.Watcher
	Store   *settings.Store
	Hub     *ipc.Hub
	Logger  *slog.Logger
	// Level, when set, is updated on reload.
	Level *slog.LevelVar
	// Loader reads a fresh configuration for Reload. Defaults to config.Load.
	Loader func() (*config.Config, error)
}

// Daemon owns the event loop and everything that runs on it.
type Daemon struct {
	backend platform.Backend
	watcher platform.Watcher
	store   *settings.Store
	hub     *ipc.Hub
	logger  *slog.Logger
	level   *slog.LevelVar
	loader  func() (*config.Config, error)

	loop       *loop.Loop
	registry   *windows.Registry
	positioner *satellite.Positioner
	ctrl       *drag.Controller
	reconciler *Reconciler
	startTime  time.Time

	cfgMu sync.RWMutex
	cfg   *config.Config

	// Loop-owned state.
	children   map[platform.WindowID]struct{}
	lastSize   geometry.Rect
	settleStop func()
	isOnLeft   bool
}

// New builds a daemon. Nothing runs until Run is called.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("daemon: config is required")
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("daemon: backend is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("daemon: settings store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hub := opts.Hub
	if hub == nil {
		hub = ipc.NewHub(logger)
	}
	loader := opts.Loader
	if loader == nil {
		loader = config.Load
	}

	cfg := opts.Config
	d := &Daemon{
		backend:   opts.Backend,
		watcher:   opts.Watcher,
		store:     opts.Store,
		hub:       hub,
		logger:    logger,
		level:     opts.Level,
		loader:    loader,
		cfg:       cfg,
		startTime: time.Now(),
		children:  make(map[platform.WindowID]struct{}),
	}

	d.loop = loop.New(cfg.FrameRate, logger.With("component", "loop"))
	d.registry = windows.NewRegistry(opts.Backend, cfg.Labels())
	d.positioner = satellite.NewPositioner(d.registry, opts.Backend, sideTracker{d}, cfg.TrackInfoGap,
		logger.With("component", "satellite"))

	syncer := NewSettingsSync(opts.Store, d, logger.With("component", "settings"))
	d.ctrl = drag.NewController(drag.Options{
		Host:          opts.Backend,
		Scheduler:     d.loop,
		Positioner:    d.positioner,
		Finder:        d.registry,
		Observer:      drag.Observers{hub, syncer},
		Logger:        logger.With("component", "drag"),
		NoMoveTargets: cfg.NoMoveTargets,
		MinSide:       cfg.MinSide,
		MaxSide:       cfg.MaxSide,
		Dialogs:       dialogSizes(cfg),
	})
	d.reconciler = NewReconciler(ReconcilerConfig{
		Interval: cfg.ReconcileEvery(),
		Logger:   logger.With("component", "reconciler"),
	}, d.loop, d.scan)

	return d, nil
}

// Hub returns the event hub subscribers attach to.
func (d *Daemon) Hub() *ipc.Hub {
	return d.hub
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.Config {
	d.cfgMu.RLock()
	defer d.cfgMu.RUnlock()
	return d.cfg
}

// Run starts the event loop, the window watchers, the reconciler and the
// settings file watcher. It blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.loop.Run(ctx)
	}()

	if d.watcher != nil {
		if err := d.watcher.WatchClients(func() { d.loop.Post(d.scan) }); err != nil {
			d.logger.Warn("client list notifications unavailable, relying on reconciler", "error", err)
		}
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		d.reconciler.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		err := d.store.Watch(ctx, d.logger.With("component", "settings"), func(s settings.Settings) {
			d.loop.Post(func() { d.applyExternal(s) })
		})
		if err != nil {
			d.logger.Warn("settings file watcher unavailable", "error", err)
		}
	}()

	d.loop.Post(d.scan)
	d.logger.Info("daemon started", "settings", d.store.Path())

	<-ctx.Done()
	wg.Wait()
	d.logger.Info("daemon stopped")
	return nil
}

// MainBounds returns the live bounds of the main window. Must run on the loop.
func (d *Daemon) MainBounds() (geometry.Rect, error) {
	return d.ctrl.MainBounds()
}

// scan reconciles the tracked windows with what the window system reports:
// attaches a newly shown main window, detaches a vanished one and places
// children that appeared since the last scan.
func (d *Daemon) scan() {
	main, attached := d.ctrl.MainWindow()

	found, ok, err := d.registry.FindMain()
	if err != nil {
		d.logger.Warn("window scan failed", "error", err)
		return
	}

	if attached && (!ok || found.ID != main) {
		d.detach(main)
		attached = false
	}
	if !attached {
		if !ok {
			return
		}
		d.attach(found)
		main = found.ID
	}

	d.scanChildren(main)
}

func (d *Daemon) attach(w platform.Window) {
	d.logger.Info("main window attached", "window_id", w.ID, "title", w.Title)
	d.ctrl.Attach(w.ID)
	d.children = make(map[platform.WindowID]struct{})
	d.lastSize = w.Bounds

	if d.watcher != nil {
		id := w.ID
		err := d.watcher.WatchGeometry(id, func(width, height int) {
			d.loop.Post(func() { d.onGeometry(id, width, height) })
		})
		if err != nil {
			d.logger.Warn("geometry notifications unavailable", "window_id", id, "error", err)
		}
	}

	if err := d.ctrl.Ready(d.store.Get()); err != nil {
		d.logger.Warn("initial placement failed", "window_id", w.ID, "error", err)
	}
	if bounds, err := d.ctrl.MainBounds(); err == nil {
		d.lastSize = bounds
	}
}

func (d *Daemon) detach(main platform.WindowID) {
	d.logger.Info("main window detached", "window_id", main)
	d.stopSettle()
	if d.watcher != nil {
		d.watcher.Unwatch(main)
	}
	d.ctrl.Detach()
	d.children = make(map[platform.WindowID]struct{})
}

func (d *Daemon) scanChildren(main platform.WindowID) {
	kids, err := d.backend.ChildWindows(main)
	if err != nil {
		d.logger.Warn("child window scan failed", "error", err)
		return
	}

	current := make(map[platform.WindowID]struct{}, len(kids))
	for _, k := range kids {
		current[k.ID] = struct{}{}
		if _, known := d.children[k.ID]; !known {
			d.logger.Debug("child window opened", "window_id", k.ID, "title", k.Title)
			d.ctrl.ChildOpened(k.ID)
		}
	}
	d.children = current
}

// onGeometry handles a ConfigureNotify on the main window. A size change
// is a resize step; the resize counts as finished once the size has been
// stable for resize_settle_ms. Pure moves not made by a drag re-dock the
// satellite.
func (d *Daemon) onGeometry(id platform.WindowID, width, height int) {
	main, attached := d.ctrl.MainWindow()
	if !attached || id != main {
		return
	}

	if width == d.lastSize.Width && height == d.lastSize.Height {
		if d.ctrl.State() != drag.StateDragging {
			d.ctrl.Reposition()
		}
		return
	}
	d.lastSize.Width = width
	d.lastSize.Height = height

	d.ctrl.Resizing()
	d.stopSettle()
	d.settleStop = d.loop.AfterFunc(d.Config().ResizeSettle(), func() {
		d.settleStop = nil
		d.ctrl.ResizeComplete()
	})
}

func (d *Daemon) stopSettle() {
	if d.settleStop != nil {
		d.settleStop()
		d.settleStop = nil
	}
}

// applyExternal applies settings written to the file by another process.
func (d *Daemon) applyExternal(s settings.Settings) {
	d.logger.Info("settings file changed on disk")
	if _, attached := d.ctrl.MainWindow(); attached {
		if err := d.ctrl.ApplySettings(s); err != nil {
			d.logger.Warn("failed to apply settings from file", "error", err)
		}
	}
	d.hub.SettingsChanged(s)
}

// applyConfig pushes reloadable values into the running components. Must
// run on the loop.
func (d *Daemon) applyConfig(old, next *config.Config) {
	d.ctrl.SetNoMoveTargets(next.NoMoveTargets)
	d.ctrl.SetSideLimits(next.MinSide, next.MaxSide)
	d.positioner.SetGap(next.TrackInfoGap)
	d.reconciler.SetInterval(next.ReconcileEvery())
	if d.level != nil {
		d.level.Set(next.SlogLevel())
	}

	if old.Titles != next.Titles {
		d.logger.Warn("window titles changed; restart to apply")
	}
	if old.FrameRate != next.FrameRate {
		d.logger.Warn("frame_rate changed; restart to apply")
	}
	if old.Hotkeys != next.Hotkeys {
		d.logger.Warn("hotkeys changed; restart to apply")
	}
	if old.SettingsFile != next.SettingsFile {
		d.logger.Warn("settings_file changed; restart to apply")
	}
	d.ctrl.Reposition()
}

// sideTracker records the last reported side and forwards it to the hub.
type sideTracker struct {
	d *Daemon
}

func (t sideTracker) SideChanged(isOnLeft bool) {
	t.d.isOnLeft = isOnLeft
	t.d.hub.SideChanged(isOnLeft)
}

func dialogSizes(cfg *config.Config) map[windows.Role]drag.Size {
	return map[windows.Role]drag.Size{
		windows.RoleSettings: {Width: cfg.Dialogs.Settings.Width, Height: cfg.Dialogs.Settings.Height},
		windows.RoleAbout:    {Width: cfg.Dialogs.About.Width, Height: cfg.Dialogs.About.Height},
	}
}
