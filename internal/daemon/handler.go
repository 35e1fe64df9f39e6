package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/coverdock/internal/drag"
	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/ipc"
	"github.com/1broseidon/coverdock/internal/settings"
	"github.com/1broseidon/coverdock/internal/windows"
)

var _ ipc.Handler = (*Daemon)(nil)

// PointerDown starts or continues a move gesture.
func (d *Daemon) PointerDown(ctx context.Context, p ipc.MovingPayload) error {
	return d.loop.Call(ctx, func() error {
		d.ctrl.PointerDown(drag.PointerEvent{
			Button: p.Button,
			LocalX: p.MouseX,
			LocalY: p.MouseY,
			Target: p.Target,
		})
		return nil
	})
}

// PointerUp ends a move gesture.
func (d *Daemon) PointerUp(ctx context.Context, p ipc.PointerUpPayload) error {
	return d.loop.Call(ctx, func() error {
		d.ctrl.PointerUp(p.Button)
		return nil
	})
}

// ApplySettings stores settings sent by the view and applies them to the
// main window when one is attached. Without a main window the settings take
// effect on attach. The view already holds s, so nothing is published.
func (d *Daemon) ApplySettings(ctx context.Context, s settings.Settings) error {
	return d.loop.Call(ctx, func() error {
		return d.applySettings(s, false)
	})
}

// UpdateSettings is ApplySettings for clients other than the view; the
// applied settings are published so the view can follow.
func (d *Daemon) UpdateSettings(ctx context.Context, s settings.Settings) error {
	return d.loop.Call(ctx, func() error {
		return d.applySettings(s, true)
	})
}

// applySettings must run on the loop. The stored size is the clamped size
// the window will actually get.
func (d *Daemon) applySettings(s settings.Settings, publish bool) error {
	cfg := d.Config()
	s.Size = geometry.ClampSide(s.Size, cfg.MinSide, cfg.MaxSide)
	if err := d.store.Set(s); err != nil {
		return err
	}
	stored := d.store.Get()
	if publish {
		d.hub.SettingsChanged(stored)
	}
	if _, attached := d.ctrl.MainWindow(); !attached {
		return nil
	}
	return d.ctrl.ApplySettings(stored)
}

// Resizing handles a resize step observed by the view.
func (d *Daemon) Resizing(ctx context.Context) error {
	return d.loop.Call(ctx, func() error {
		d.ctrl.Resizing()
		return nil
	})
}

// ShowSettings asks the view to open the settings dialog.
func (d *Daemon) ShowSettings(ctx context.Context) error {
	return d.loop.Call(ctx, func() error {
		d.hub.ShowSettings()
		return nil
	})
}

// ShowAbout asks the view to open the about dialog.
func (d *Daemon) ShowAbout(ctx context.Context) error {
	return d.loop.Call(ctx, func() error {
		d.hub.ShowAbout()
		return nil
	})
}

// ToggleAlwaysOnTop flips and persists the always-on-top flag.
func (d *Daemon) ToggleAlwaysOnTop(ctx context.Context) error {
	return d.loop.Call(ctx, func() error {
		next, err := d.store.Update(func(s settings.Settings) settings.Settings {
			s.IsAlwaysOnTop = !s.IsAlwaysOnTop
			return s
		})
		if err != nil {
			return err
		}
		if _, attached := d.ctrl.MainWindow(); !attached {
			return nil
		}
		return d.ctrl.SetAlwaysOnTop(next.IsAlwaysOnTop)
	})
}

// Status reports the daemon and widget state.
func (d *Daemon) Status(ctx context.Context) (ipc.StatusData, error) {
	var status ipc.StatusData
	err := d.loop.Call(ctx, func() error {
		main, attached := d.ctrl.MainWindow()
		status = ipc.StatusData{
			DaemonRunning: true,
			UptimeSeconds: int64(time.Since(d.startTime).Seconds()),
			Attached:      attached,
			State:         d.ctrl.State().String(),
			Settings:      d.store.Get(),
			SettingsPath:  d.store.Path(),
		}
		if !attached {
			return nil
		}
		status.MainWindow = uint32(main)
		status.IsOnLeft = d.isOnLeft
		if bounds, err := d.ctrl.MainBounds(); err == nil {
			status.Bounds = &bounds
		}
		if _, open, err := d.registry.FindByRole(main, windows.RoleTrackInfo); err == nil {
			status.TrackInfoOpen = open
		}
		return nil
	})
	return status, err
}

// Monitors lists the displays.
func (d *Daemon) Monitors(ctx context.Context) (ipc.MonitorsData, error) {
	var data ipc.MonitorsData
	err := d.loop.Call(ctx, func() error {
		displays, err := d.backend.Displays()
		if err != nil {
			return fmt.Errorf("failed to get monitors: %w", err)
		}
		data = ipc.MonitorsFromDisplays(displays)
		return nil
	})
	return data, err
}

// Reload re-reads the configuration file and applies what can change at
// runtime.
func (d *Daemon) Reload(ctx context.Context) error {
	next, err := d.loader()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	return d.loop.Call(ctx, func() error {
		d.cfgMu.Lock()
		old := d.cfg
		d.cfg = next
		d.cfgMu.Unlock()

		d.applyConfig(old, next)
		d.logger.Info("config reloaded")
		return nil
	})
}
