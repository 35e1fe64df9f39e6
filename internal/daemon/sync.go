package daemon

import (
	"log/slog"

	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/settings"
)

// BoundsSource reports the main window's live bounds.
type BoundsSource interface {
	MainBounds() (geometry.Rect, error)
}

// SettingsSync persists window changes made by the user: the position when
// a move gesture ends and the side when a resize settles.
type SettingsSync struct {
	store  *settings.Store
	bounds BoundsSource
	logger *slog.Logger
}

// NewSettingsSync creates a settings synchronizer.
func NewSettingsSync(store *settings.Store, bounds BoundsSource, logger *slog.Logger) *SettingsSync {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsSync{
		store:  store,
		bounds: bounds,
		logger: logger,
	}
}

// WindowMoved is ignored; only the final position of a gesture is stored.
func (s *SettingsSync) WindowMoved(geometry.Rect) {}

// MoveEnded stores the position the gesture left the window at.
func (s *SettingsSync) MoveEnded() {
	b, err := s.bounds.MainBounds()
	if err != nil {
		s.logger.Warn("cannot persist position", "error", err)
		return
	}
	if _, err := s.store.Update(func(cur settings.Settings) settings.Settings {
		return cur.WithPosition(b.X, b.Y)
	}); err != nil {
		s.logger.Warn("failed to save position", "x", b.X, "y", b.Y, "error", err)
		return
	}
	s.logger.Debug("position saved", "x", b.X, "y", b.Y)
}

// WindowResized stores the new side.
func (s *SettingsSync) WindowResized(side int) {
	if _, err := s.store.Update(func(cur settings.Settings) settings.Settings {
		return cur.WithSize(side)
	}); err != nil {
		s.logger.Warn("failed to save size", "size", side, "error", err)
		return
	}
	s.logger.Debug("size saved", "size", side)
}

// WindowReady is ignored.
func (s *SettingsSync) WindowReady(bool) {}
