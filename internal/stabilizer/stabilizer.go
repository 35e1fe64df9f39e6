// Package stabilizer keeps a window's size fixed for the duration of a move
// gesture.
//
// Some window managers grow a window by its frame extents every time the same
// geometry is committed again. Taking width and height from a snapshot made
// when the gesture starts, instead of re-querying the live window on each
// tick, makes every committed rect a pure function of the target origin.
package stabilizer

import "github.com/1broseidon/coverdock/internal/geometry"

// Session is the size snapshot for one gesture.
type Session struct {
	stableWidth  int
	stableHeight int
}

// Begin snapshots the size of current. Call once when a gesture starts.
func Begin(current geometry.Rect) *Session {
	return &Session{
		stableWidth:  current.Width,
		stableHeight: current.Height,
	}
}

// Next returns the bounds to commit for a window origin of (x, y).
func (s *Session) Next(x, y int) geometry.Rect {
	return geometry.Rect{
		X:      x,
		Y:      y,
		Width:  s.stableWidth,
		Height: s.stableHeight,
	}
}

// Size returns the snapshotted width and height.
func (s *Session) Size() (width, height int) {
	return s.stableWidth, s.stableHeight
}

// End discards a session. It exists so call sites read symmetrically with
// Begin; the next Begin always takes a fresh snapshot.
func End(s *Session) {
	if s == nil {
		return
	}
	s.stableWidth = 0
	s.stableHeight = 0
}
