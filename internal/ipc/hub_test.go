package ipc

import (
	"encoding/json"
	"testing"

	"github.com/1broseidon/coverdock/internal/geometry"
)

func decodeLine(t *testing.T, line []byte) Event {
	t.Helper()
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		t.Fatalf("invalid event line %q: %v", line, err)
	}
	return ev
}

func TestHub_FanOut(t *testing.T) {
	hub := NewHub(nil)
	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelA()
	defer cancelB()

	hub.WindowMoved(geometry.Rect{X: 1, Y: 2, Width: 150, Height: 150})

	for _, ch := range []<-chan []byte{a, b} {
		ev := decodeLine(t, <-ch)
		var r geometry.Rect
		if ev.Kind != EventWindowMoved || ev.Decode(&r) != nil || r.Width != 150 {
			t.Fatalf("event = %+v", ev)
		}
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.SideChanged(true)
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("buffered = %d, want %d", len(ch), subscriberBuffer)
	}
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	ch, cancel := hub.Subscribe()
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel not closed")
	}
	if hub.Subscribers() != 0 {
		t.Fatalf("subscribers = %d", hub.Subscribers())
	}
	hub.ShowAbout()
}

func TestHub_ReadyAndMoveEnded(t *testing.T) {
	hub := NewHub(nil)
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.MoveEnded()
	hub.WindowReady(true)

	ev := decodeLine(t, <-ch)
	var side SidePayload
	if ev.Kind != EventWindowReady || ev.Decode(&side) != nil || !side.IsOnLeft {
		t.Fatalf("event = %+v", ev)
	}
}

func TestParseRequest_MissingCommand(t *testing.T) {
	if _, err := ParseRequest([]byte(`{"payload":{}}`)); err == nil {
		t.Fatal("expected error")
	}
}
