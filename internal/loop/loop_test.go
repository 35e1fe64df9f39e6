package loop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func startLoop(t *testing.T, rate int) *Loop {
	t.Helper()
	l := New(rate, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(cancel)
	return l
}

func TestCall_RunsOnLoop(t *testing.T) {
	l := startLoop(t, 60)

	ran := false
	err := l.Call(context.Background(), func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if !ran {
		t.Fatal("task did not run")
	}
}

func TestCall_ReturnsTaskError(t *testing.T) {
	l := startLoop(t, 60)

	want := errors.New("boom")
	if err := l.Call(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("Call error = %v, want %v", err, want)
	}
}

func TestRequestFrame_Fires(t *testing.T) {
	l := startLoop(t, 200)

	fired := make(chan struct{})
	l.Post(func() {
		l.RequestFrame(func() { close(fired) })
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("frame did not fire")
	}
}

func TestCancelFrame_PreventsLateTick(t *testing.T) {
	l := startLoop(t, 1000)

	fired := make(chan struct{}, 1)
	err := l.Call(context.Background(), func() error {
		id := l.RequestFrame(func() { fired <- struct{}{} })
		// Let the timer fire and queue its task before cancelling, so the
		// cancellation has to win against an already-posted tick.
		time.Sleep(20 * time.Millisecond)
		l.CancelFrame(id)
		return nil
	})
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}

	select {
	case <-fired:
		t.Fatal("cancelled frame ran")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPanicInTaskIsRecovered(t *testing.T) {
	l := startLoop(t, 60)

	l.Post(func() { panic("bad task") })
	if err := l.Call(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("loop did not survive panic: %v", err)
	}
}

func TestPostAfterStop(t *testing.T) {
	l := New(60, nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	if l.Post(func() {}) {
		t.Fatal("Post succeeded on stopped loop")
	}
	if err := l.Call(context.Background(), func() error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("Call error = %v, want ErrStopped", err)
	}
}

func TestAfterFunc_Stop(t *testing.T) {
	l := startLoop(t, 60)

	fired := make(chan struct{}, 1)
	l.Call(context.Background(), func() error {
		stop := l.AfterFunc(10*time.Millisecond, func() { fired <- struct{}{} })
		stop()
		return nil
	})

	select {
	case <-fired:
		t.Fatal("stopped timer ran")
	case <-time.After(50 * time.Millisecond):
	}
}
