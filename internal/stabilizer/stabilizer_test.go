package stabilizer

import (
	"testing"

	"github.com/1broseidon/coverdock/internal/geometry"
)

func TestNext_IdempotentForRepeatedOrigin(t *testing.T) {
	start := geometry.Rect{X: 40, Y: 60, Width: 220, Height: 220}
	s := Begin(start)

	want := geometry.Rect{X: 300, Y: 180, Width: 220, Height: 220}
	for i := 0; i < 50; i++ {
		if got := s.Next(300, 180); got != want {
			t.Fatalf("call %d: Next = %+v, want %+v", i, got, want)
		}
	}
}

func TestNext_IgnoresLaterSizeChanges(t *testing.T) {
	live := geometry.Rect{X: 0, Y: 0, Width: 150, Height: 150}
	s := Begin(live)

	// Simulate the window manager growing the window between ticks.
	live.Width += 2
	live.Height += 28

	got := s.Next(10, 20)
	if got.Width != 150 || got.Height != 150 {
		t.Fatalf("Next size = %dx%d, want 150x150", got.Width, got.Height)
	}
}

func TestBegin_ResnapshotsAfterEnd(t *testing.T) {
	first := Begin(geometry.Rect{Width: 150, Height: 150})
	End(first)

	second := Begin(geometry.Rect{Width: 300, Height: 300})
	if w, h := second.Size(); w != 300 || h != 300 {
		t.Fatalf("second session size = %dx%d, want 300x300", w, h)
	}
}

func TestEnd_NilSession(t *testing.T) {
	End(nil)
}
