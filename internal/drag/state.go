package drag

import "github.com/1broseidon/coverdock/internal/geometry"

// State is the gesture state of the controller.
type State int

const (
	// StateIdle means no move gesture is in progress.
	StateIdle State = iota
	// StateDragging means the main window follows the cursor.
	StateDragging
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// PrimaryButton is the pointer button that starts and ends a gesture.
const PrimaryButton = 0

// PointerEvent is a pointer press or release reported by the view.
type PointerEvent struct {
	Button int
	// LocalX and LocalY are the press position inside the main window.
	LocalX int
	LocalY int
	// Target is the class of the element under the pointer.
	Target string
}

// Observer is told about every bounds change the controller commits.
type Observer interface {
	WindowMoved(bounds geometry.Rect)
	MoveEnded()
	WindowResized(side int)
	WindowReady(isOnLeft bool)
}

// Observers fans notifications out to several observers in order.
type Observers []Observer

func (o Observers) WindowMoved(bounds geometry.Rect) {
	for _, obs := range o {
		obs.WindowMoved(bounds)
	}
}

func (o Observers) MoveEnded() {
	for _, obs := range o {
		obs.MoveEnded()
	}
}

func (o Observers) WindowResized(side int) {
	for _, obs := range o {
		obs.WindowResized(side)
	}
}

func (o Observers) WindowReady(isOnLeft bool) {
	for _, obs := range o {
		obs.WindowReady(isOnLeft)
	}
}
