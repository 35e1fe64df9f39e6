package satellite

import (
	"errors"
	"testing"

	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/platform"
	"github.com/1broseidon/coverdock/internal/windows"
)

type fakeFinder struct {
	win   platform.Window
	found bool
	err   error
}

func (f *fakeFinder) FindByRole(root platform.WindowID, role windows.Role) (platform.Window, bool, error) {
	if role != windows.RoleTrackInfo {
		return platform.Window{}, false, nil
	}
	return f.win, f.found, f.err
}

type moveCall struct {
	id     platform.WindowID
	bounds geometry.Rect
}

type fakeMover struct {
	calls []moveCall
	err   error
}

func (f *fakeMover) MoveResize(id platform.WindowID, bounds geometry.Rect) error {
	f.calls = append(f.calls, moveCall{id, bounds})
	return f.err
}

type sideRecorder struct {
	sides []bool
}

func (s *sideRecorder) SideChanged(isOnLeft bool) {
	s.sides = append(s.sides, isOnLeft)
}

var testDisplay = geometry.Display{Bounds: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}}

func TestReposition_Placement(t *testing.T) {
	tests := []struct {
		name     string
		display  geometry.Display
		wantX    int
		wantLeft bool
	}{
		// Main at x=100 is left of the 1920px display midline.
		{"left half places satellite to the right", testDisplay, 310, true},
		// Main at x=100 on a display starting at x=-1920 is in its right half.
		{"right half places satellite to the left",
			geometry.Display{Bounds: geometry.Rect{X: -1920, Y: 0, Width: 1920, Height: 1080}}, -60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &fakeFinder{
				win:   platform.Window{ID: 7, Title: windows.LabelTrackInfo, Bounds: geometry.Rect{X: 0, Y: 0, Width: 150, Height: 60}},
				found: true,
			}
			mover := &fakeMover{}
			sides := &sideRecorder{}
			p := NewPositioner(finder, mover, sides, geometry.Gap{X: 10, Y: 10}, nil)

			main := geometry.Rect{X: 100, Y: 100, Width: 200, Height: 200}
			if err := p.Reposition(1, main, tt.display); err != nil {
				t.Fatalf("Reposition error: %v", err)
			}

			if len(mover.calls) != 1 {
				t.Fatalf("expected 1 move, got %d", len(mover.calls))
			}
			want := geometry.Rect{X: tt.wantX, Y: 110, Width: 150, Height: 60}
			if mover.calls[0].id != 7 || mover.calls[0].bounds != want {
				t.Fatalf("moved %d to %+v, want 7 to %+v", mover.calls[0].id, mover.calls[0].bounds, want)
			}
			if len(sides.sides) != 1 || sides.sides[0] != tt.wantLeft {
				t.Fatalf("side notifications = %v, want [%v]", sides.sides, tt.wantLeft)
			}
		})
	}
}

func TestReposition_MissingSatelliteStillNotifies(t *testing.T) {
	mover := &fakeMover{}
	sides := &sideRecorder{}
	p := NewPositioner(&fakeFinder{}, mover, sides, DefaultGap, nil)

	err := p.Reposition(1, geometry.Rect{X: 100, Y: 100, Width: 200, Height: 200}, testDisplay)
	if err != nil {
		t.Fatalf("Reposition error: %v", err)
	}
	if len(mover.calls) != 0 {
		t.Fatalf("expected no bounds mutations, got %d", len(mover.calls))
	}
	if len(sides.sides) != 1 || !sides.sides[0] {
		t.Fatalf("side notifications = %v, want [true]", sides.sides)
	}
}

func TestReposition_SkipsWhenAlreadyInPlace(t *testing.T) {
	finder := &fakeFinder{
		win:   platform.Window{ID: 7, Bounds: geometry.Rect{X: 310, Y: 110, Width: 150, Height: 60}},
		found: true,
	}
	mover := &fakeMover{}
	p := NewPositioner(finder, mover, &sideRecorder{}, DefaultGap, nil)

	if err := p.Reposition(1, geometry.Rect{X: 100, Y: 100, Width: 200, Height: 200}, testDisplay); err != nil {
		t.Fatalf("Reposition error: %v", err)
	}
	if len(mover.calls) != 0 {
		t.Fatalf("expected no move for an already placed satellite, got %d", len(mover.calls))
	}
}

func TestReposition_FinderErrorSurfaces(t *testing.T) {
	p := NewPositioner(&fakeFinder{err: errors.New("BadWindow")}, &fakeMover{}, &sideRecorder{}, DefaultGap, nil)

	if err := p.Reposition(1, geometry.Rect{Width: 150, Height: 150}, testDisplay); err == nil {
		t.Fatal("expected error")
	}
}

func TestReposition_MoveErrorSurfaces(t *testing.T) {
	finder := &fakeFinder{win: platform.Window{ID: 7, Bounds: geometry.Rect{Width: 150, Height: 60}}, found: true}
	p := NewPositioner(finder, &fakeMover{err: errors.New("destroyed")}, &sideRecorder{}, DefaultGap, nil)

	if err := p.Reposition(1, geometry.Rect{Width: 150, Height: 150}, testDisplay); err == nil {
		t.Fatal("expected error")
	}
}

func TestReposition_NilNotifier(t *testing.T) {
	p := NewPositioner(&fakeFinder{}, &fakeMover{}, nil, DefaultGap, nil)
	if err := p.Reposition(1, geometry.Rect{Width: 150, Height: 150}, testDisplay); err != nil {
		t.Fatalf("Reposition error: %v", err)
	}
}
