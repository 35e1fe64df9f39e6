package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/coverdock/internal/runtimepath"
	"github.com/1broseidon/coverdock/internal/settings"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	return conn, nil
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeRequest(conn, req); err != nil {
		return nil, err
	}
	return readResponse(bufio.NewReader(conn))
}

func writeRequest(conn net.Conn, req *Request) error {
	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func readResponse(reader *bufio.Reader) (*Response, error) {
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) send(kind Kind, payload interface{}) (*Response, error) {
	req := &Request{Command: kind}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.send(CommandReload, nil)
	return err
}

// PointerDown reports a pointer press inside the main window.
func (c *Client) PointerDown(p MovingPayload) error {
	_, err := c.send(CommandWindowMoving, p)
	return err
}

// PointerUp reports a pointer release.
func (c *Client) PointerUp(button int) error {
	_, err := c.send(CommandWindowMoved, PointerUpPayload{Button: button})
	return err
}

// ApplySettings sends a full settings record to be applied and stored.
func (c *Client) ApplySettings(s settings.Settings) error {
	_, err := c.send(CommandSettingsChanged, s)
	return err
}

// Resizing reports an intermediate resize step observed by the view.
func (c *Client) Resizing() error {
	_, err := c.send(CommandWindowResizing, nil)
	return err
}

// ShowSettings asks the view to open the settings dialog.
func (c *Client) ShowSettings() error {
	_, err := c.send(CommandShowSettings, nil)
	return err
}

// ShowAbout asks the view to open the about dialog.
func (c *Client) ShowAbout() error {
	_, err := c.send(CommandShowAbout, nil)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.send(CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	resp, err := c.send(CommandGetMonitors, nil)
	if err != nil {
		return nil, err
	}

	var monitors MonitorsData
	if err := json.Unmarshal(resp.Data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}
	return &monitors, nil
}

// UpdateSettings reads the current settings, applies fn and sends the result.
func (c *Client) UpdateSettings(fn func(settings.Settings) settings.Settings) (settings.Settings, error) {
	status, err := c.GetStatus()
	if err != nil {
		return settings.Settings{}, err
	}
	next := fn(status.Settings)
	if _, err := c.send(CommandUpdateSettings, next); err != nil {
		return settings.Settings{}, err
	}
	return next, nil
}

// Subscribe opens an event stream. The channel is closed when ctx is done or
// the daemon closes the connection.
func (c *Client) Subscribe(ctx context.Context) (<-chan Event, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}

	conn.SetDeadline(time.Now().Add(c.timeout))
	if err := writeRequest(conn, &Request{Command: CommandSubscribe}); err != nil {
		conn.Close()
		return nil, err
	}
	reader := bufio.NewReader(conn)
	if _, err := readResponse(reader); err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})

	events := make(chan Event)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()
		for {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				return
			}
			var ev Event
			if err := json.Unmarshal(line, &ev); err != nil {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
