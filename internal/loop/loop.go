// Package loop provides the daemon's single event loop. Every core operation
// runs on the loop goroutine, so window bounds, the drag session and the
// satellite position are only ever touched from one place.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrStopped is returned when work is submitted to a loop that has exited.
var ErrStopped = errors.New("event loop stopped")

// DefaultFrameRate is used when New is given a non-positive rate.
const DefaultFrameRate = 60

// FrameID identifies a pending frame request. The zero value is never issued.
type FrameID uint64

// Loop serializes tasks onto one goroutine and schedules per-frame callbacks.
type Loop struct {
	tasks         chan func()
	done          chan struct{}
	frameInterval time.Duration
	logger        *slog.Logger

	// Owned by the loop goroutine.
	nextFrame FrameID
	frames    map[FrameID]*time.Timer
}

// New creates a loop that runs frame callbacks at most frameRate times per
// second.
func New(frameRate int, logger *slog.Logger) *Loop {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		tasks:         make(chan func(), 256),
		done:          make(chan struct{}),
		frameInterval: time.Second / time.Duration(frameRate),
		logger:        logger,
		frames:        make(map[FrameID]*time.Timer),
	}
}

// FrameInterval returns the time between frames.
func (l *Loop) FrameInterval() time.Duration {
	return l.frameInterval
}

// Run executes tasks until ctx is cancelled. Pending frames are dropped on
// exit.
func (l *Loop) Run(ctx context.Context) {
	defer func() {
		for id, t := range l.frames {
			t.Stop()
			delete(l.frames, id)
		}
		close(l.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			l.runTask(fn)
		}
	}
}

func (l *Loop) runTask(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event loop task panic recovered", "error", err)
		}
	}()
	fn()
}

// Post queues fn to run on the loop goroutine. It returns false if the loop
// has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop goroutine and waits for its result.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- fn() }) {
		return ErrStopped
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// RequestFrame schedules fn to run on the loop goroutine at the next frame.
// Must be called from the loop goroutine.
func (l *Loop) RequestFrame(fn func()) FrameID {
	l.nextFrame++
	id := l.nextFrame
	l.frames[id] = time.AfterFunc(l.frameInterval, func() {
		l.Post(func() { l.fireFrame(id, fn) })
	})
	return id
}

// CancelFrame drops a pending frame request. Must be called from the loop
// goroutine; once it returns, fn for id will not run even if its timer has
// already fired.
func (l *Loop) CancelFrame(id FrameID) {
	if t, ok := l.frames[id]; ok {
		t.Stop()
		delete(l.frames, id)
	}
}

func (l *Loop) fireFrame(id FrameID, fn func()) {
	if _, ok := l.frames[id]; !ok {
		return
	}
	delete(l.frames, id)
	fn()
}

// AfterFunc runs fn on the loop goroutine after d. The returned stop function
// must be called from the loop goroutine and guarantees fn will not run.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (stop func()) {
	cancelled := false
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled {
				fn()
			}
		})
	})
	return func() {
		cancelled = true
		t.Stop()
	}
}
