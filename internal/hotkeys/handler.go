package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/coverdock/internal/config"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// actionTimeout bounds how long a hotkey waits for the daemon.
const actionTimeout = 2 * time.Second

// Actions are the widget operations bound to global shortcuts.
type Actions interface {
	ShowSettings(ctx context.Context) error
	ShowAbout(ctx context.Context) error
	ToggleAlwaysOnTop(ctx context.Context) error
}

// X11Accessor is implemented by backends that expose X11 internals.
type X11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions Actions
	logger  *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(x X11Accessor, actions Actions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	xu := x.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    x.RootWindow(),
		actions: actions,
		logger:  logger,
	}
}

// RegisterAll binds every non-empty key sequence in keys. A binding that
// fails is logged and skipped so one bad sequence does not disable the rest.
func (h *Handler) RegisterAll(keys config.Hotkeys) int {
	bindings := []struct {
		name string
		seq  string
		fn   func(context.Context) error
	}{
		{"settings", keys.Settings, h.actions.ShowSettings},
		{"about", keys.About, h.actions.ShowAbout},
		{"toggle_on_top", keys.ToggleOnTop, h.actions.ToggleAlwaysOnTop},
	}

	registered := 0
	for _, b := range bindings {
		if b.seq == "" {
			continue
		}
		if err := h.Register(b.name, b.seq, b.fn); err != nil {
			h.logger.Warn("hotkey not registered", "action", b.name, "keys", b.seq, "error", err)
			continue
		}
		h.logger.Info("hotkey registered", "action", b.name, "keys", b.seq)
		registered++
	}
	return registered
}

// Register binds keySequence to action. The action runs off the X event
// goroutine, since it waits on the daemon's loop.
func (h *Handler) Register(name, keySequence string, action func(context.Context) error) error {
	if err := h.RegisterFunc(keySequence, func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			if err := action(ctx); err != nil {
				h.logger.Warn("hotkey action failed", "action", name, "error", err)
			}
		}()
	}); err != nil {
		return fmt.Errorf("failed to register %s hotkey: %w", name, err)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
