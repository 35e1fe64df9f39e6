package ipc

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/settings"
)

// subscriberBuffer is the number of events a slow subscriber may lag behind
// before events are dropped for it.
const subscriberBuffer = 128

// Hub fans daemon events out to every subscribed connection. Publishing
// never blocks; a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[chan []byte]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel func removes it
// and closes the channel.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish sends an event to every subscriber.
func (h *Hub) Publish(kind Kind, payload interface{}) {
	ev, err := NewEvent(kind, payload)
	if err != nil {
		h.logger.Error("dropping event", "kind", kind, "error", err)
		return
	}
	line, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("dropping event", "kind", kind, "error", err)
		return
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- line:
		default:
			h.logger.Warn("subscriber is lagging, event dropped", "kind", kind)
		}
	}
}

// WindowMoved publishes the committed bounds of a drag tick.
func (h *Hub) WindowMoved(bounds geometry.Rect) {
	h.Publish(EventWindowMoved, bounds)
}

// MoveEnded is a no-op; the view already knows it released the pointer.
func (h *Hub) MoveEnded() {}

// WindowResized publishes the new square side.
func (h *Hub) WindowResized(side int) {
	h.Publish(EventWindowResized, side)
}

// WindowReady publishes the initial side.
func (h *Hub) WindowReady(isOnLeft bool) {
	h.Publish(EventWindowReady, SidePayload{IsOnLeft: isOnLeft})
}

// SideChanged publishes the side of the main window after a reposition.
func (h *Hub) SideChanged(isOnLeft bool) {
	h.Publish(EventSideChanged, SidePayload{IsOnLeft: isOnLeft})
}

// SettingsChanged publishes settings applied from outside the view.
func (h *Hub) SettingsChanged(s settings.Settings) {
	h.Publish(EventSettingsChanged, s)
}

// ShowSettings asks the view to open the settings dialog.
func (h *Hub) ShowSettings() {
	h.Publish(EventShowSettings, nil)
}

// ShowAbout asks the view to open the about dialog.
func (h *Hub) ShowAbout() {
	h.Publish(EventShowAbout, nil)
}
