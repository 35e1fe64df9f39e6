package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/settings"
)

type fakeHandler struct {
	mu        sync.Mutex
	downs     []MovingPayload
	ups       []PointerUpPayload
	applied   []settings.Settings
	updated   []settings.Settings
	resizes   int
	reloads   int
	applyErr  error
	status    StatusData
	monitors  MonitorsData
	onShowSet func()
}

func (h *fakeHandler) PointerDown(_ context.Context, p MovingPayload) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.downs = append(h.downs, p)
	return nil
}

func (h *fakeHandler) PointerUp(_ context.Context, p PointerUpPayload) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ups = append(h.ups, p)
	return nil
}

func (h *fakeHandler) ApplySettings(_ context.Context, s settings.Settings) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.applyErr != nil {
		return h.applyErr
	}
	h.applied = append(h.applied, s)
	h.status.Settings = s
	return nil
}

func (h *fakeHandler) UpdateSettings(_ context.Context, s settings.Settings) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updated = append(h.updated, s)
	h.status.Settings = s
	return nil
}

func (h *fakeHandler) Resizing(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resizes++
	return nil
}

func (h *fakeHandler) ShowSettings(context.Context) error {
	if h.onShowSet != nil {
		h.onShowSet()
	}
	return nil
}

func (h *fakeHandler) ShowAbout(context.Context) error { return nil }

func (h *fakeHandler) Status(context.Context) (StatusData, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status, nil
}

func (h *fakeHandler) Monitors(context.Context) (MonitorsData, error) {
	return h.monitors, nil
}

func (h *fakeHandler) Reload(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
	return nil
}

// startServer runs a server on a short socket path; t.TempDir paths can
// exceed the unix socket length limit.
func startServer(t *testing.T, h Handler, hub *Hub) (*Server, *Client) {
	t.Helper()
	dir, err := os.MkdirTemp("", "cdipc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "s.sock")
	srv, err := NewServer(socket, h, hub, nil)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, NewClientAt(socket)
}

func TestServer_PointerCommands(t *testing.T) {
	h := &fakeHandler{}
	_, client := startServer(t, h, nil)

	if err := client.PointerDown(MovingPayload{MouseX: 12, MouseY: 34, Button: 0, Target: "cover"}); err != nil {
		t.Fatalf("PointerDown error: %v", err)
	}
	if err := client.PointerUp(0); err != nil {
		t.Fatalf("PointerUp error: %v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.downs) != 1 || h.downs[0] != (MovingPayload{MouseX: 12, MouseY: 34, Target: "cover"}) {
		t.Fatalf("downs = %+v", h.downs)
	}
	if len(h.ups) != 1 || h.ups[0].Button != 0 {
		t.Fatalf("ups = %+v", h.ups)
	}
}

func TestServer_SettingsRoundTrip(t *testing.T) {
	h := &fakeHandler{}
	_, client := startServer(t, h, nil)

	next, err := client.UpdateSettings(func(s settings.Settings) settings.Settings {
		return s.WithPosition(40, 50).WithSize(300)
	})
	if err != nil {
		t.Fatalf("UpdateSettings error: %v", err)
	}
	if next.X != 40 || next.Y != 50 || next.Size != 300 {
		t.Fatalf("next = %+v", next)
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus error: %v", err)
	}
	if status.Settings.Size != 300 {
		t.Fatalf("status size = %d, want 300", status.Settings.Size)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.updated) != 1 || len(h.applied) != 0 {
		t.Fatalf("updated=%d applied=%d, want the update path only", len(h.updated), len(h.applied))
	}
}

func TestServer_ViewSettingsUseApplyPath(t *testing.T) {
	h := &fakeHandler{}
	_, client := startServer(t, h, nil)

	if err := client.ApplySettings(settings.Default().WithPosition(7, 8)); err != nil {
		t.Fatalf("ApplySettings error: %v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.applied) != 1 || len(h.updated) != 0 {
		t.Fatalf("applied=%d updated=%d, want the apply path only", len(h.applied), len(h.updated))
	}
}

func TestServer_PartialSettingsMergeOverDefaults(t *testing.T) {
	h := &fakeHandler{}
	_, client := startServer(t, h, nil)

	_, err := client.sendRequest(&Request{
		Command: CommandSettingsChanged,
		Payload: json.RawMessage(`{"x":5,"y":6}`),
	})
	if err != nil {
		t.Fatalf("request error: %v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	got := h.applied[0]
	if got.X != 5 || got.Y != 6 || got.Size != settings.MinSideLength || !got.IsAlwaysOnTop {
		t.Fatalf("applied = %+v", got)
	}
}

func TestServer_HandlerErrorBecomesErrorResponse(t *testing.T) {
	h := &fakeHandler{applyErr: errors.New("main window is not attached")}
	_, client := startServer(t, h, nil)

	err := client.ApplySettings(settings.Default())
	if err == nil || !strings.Contains(err.Error(), "main window is not attached") {
		t.Fatalf("error = %v", err)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	_, client := startServer(t, &fakeHandler{}, nil)

	_, err := client.sendRequest(&Request{Command: "TILE"})
	if err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("error = %v", err)
	}
}

func TestServer_InvalidPayload(t *testing.T) {
	_, client := startServer(t, &fakeHandler{}, nil)

	_, err := client.sendRequest(&Request{Command: CommandWindowMoving, Payload: json.RawMessage(`"nope"`)})
	if err == nil || !strings.Contains(err.Error(), "Invalid WINDOW_MOVING payload") {
		t.Fatalf("error = %v", err)
	}
}

func TestServer_MonitorsAndReload(t *testing.T) {
	h := &fakeHandler{
		monitors: MonitorsFromDisplays([]geometry.Display{
			{ID: 0, Name: "DP-1", Bounds: geometry.Rect{Width: 1920, Height: 1080}, Usable: geometry.Rect{Y: 30, Width: 1920, Height: 1050}},
		}),
	}
	_, client := startServer(t, h, nil)

	data, err := client.GetMonitors()
	if err != nil {
		t.Fatalf("GetMonitors error: %v", err)
	}
	if len(data.Monitors) != 1 || data.Monitors[0].Name != "DP-1" || data.Monitors[0].Usable.Y != 30 {
		t.Fatalf("monitors = %+v", data.Monitors)
	}

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reloads != 1 {
		t.Fatalf("reloads = %d", h.reloads)
	}
}

func TestServer_SubscribeStreamsEvents(t *testing.T) {
	hub := NewHub(nil)
	h := &fakeHandler{}
	h.onShowSet = hub.ShowSettings
	_, client := startServer(t, h, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := client.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	waitFor(t, func() bool { return hub.Subscribers() == 1 })

	hub.SideChanged(false)
	hub.WindowResized(250)
	if err := client.ShowSettings(); err != nil {
		t.Fatalf("ShowSettings error: %v", err)
	}

	ev := next(t, events)
	var side SidePayload
	if ev.Kind != EventSideChanged || ev.Decode(&side) != nil || side.IsOnLeft {
		t.Fatalf("first event = %+v", ev)
	}

	ev = next(t, events)
	var size int
	if ev.Kind != EventWindowResized || ev.Decode(&size) != nil || size != 250 {
		t.Fatalf("second event = %+v", ev)
	}

	ev = next(t, events)
	if ev.Kind != EventShowSettings {
		t.Fatalf("third event = %+v", ev)
	}

	cancel()
	waitFor(t, func() bool { return hub.Subscribers() == 0 })
}

func TestServer_StopClosesSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv, client := startServer(t, &fakeHandler{}, hub)

	events, err := client.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}
	srv.Stop()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected closed stream")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after Stop")
	}
	if _, err := os.Stat(srv.SocketPath()); !os.IsNotExist(err) {
		t.Fatalf("socket still present: %v", err)
	}
}

func next(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("event stream closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
