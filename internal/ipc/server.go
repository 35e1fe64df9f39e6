package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/1broseidon/coverdock/internal/runtimepath"
	"github.com/1broseidon/coverdock/internal/settings"
)

// maxRequestSize bounds a single request line.
const maxRequestSize = 1 << 20

// Handler executes requests. Implementations are called from connection
// goroutines and must serialize their own work.
type Handler interface {
	PointerDown(ctx context.Context, p MovingPayload) error
	PointerUp(ctx context.Context, p PointerUpPayload) error
	// ApplySettings applies settings sent by the view itself.
	ApplySettings(ctx context.Context, s settings.Settings) error
	// UpdateSettings applies settings from any other client and tells the
	// view about them.
	UpdateSettings(ctx context.Context, s settings.Settings) error
	Resizing(ctx context.Context) error
	ShowSettings(ctx context.Context) error
	ShowAbout(ctx context.Context) error
	Status(ctx context.Context) (StatusData, error)
	Monitors(ctx context.Context) (MonitorsData, error)
	Reload(ctx context.Context) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	handler    Handler
	hub        *Hub
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        map[net.Conn]struct{}
}

// NewServer creates a new IPC server. An empty socketPath selects the
// default runtime socket.
func NewServer(socketPath string, handler Handler, hub *Hub, logger *slog.Logger) (*Server, error) {
	if socketPath == "" {
		path, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = path
	}
	if logger == nil {
		logger = slog.Default()
	}
	if hub == nil {
		hub = NewHub(logger)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		hub:        hub,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		conns:      make(map[net.Conn]struct{}),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves newline-delimited requests until the client
// disconnects. A SUBSCRIBE request turns the connection into an event stream.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRequestSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		req, err := ParseRequest(line)
		if err != nil {
			s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
			continue
		}

		if req.Command == CommandSubscribe {
			s.stream(conn, scanner)
			return
		}

		if !s.writeResponse(conn, s.handleCommand(req)) {
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("IPC read error", "error", err)
	}
}

// stream forwards hub events to conn until the client hangs up or the
// server stops.
func (s *Server) stream(conn net.Conn, scanner *bufio.Scanner) {
	events, cancel := s.hub.Subscribe()
	defer cancel()

	resp, _ := NewOKResponse(nil)
	if !s.writeResponse(conn, resp) {
		return
	}
	s.logger.Debug("IPC subscriber connected")

	// Anything the subscriber sends afterwards is ignored; EOF ends the stream.
	hangup := make(chan struct{})
	go func() {
		defer close(hangup)
		for scanner.Scan() {
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-hangup:
			s.logger.Debug("IPC subscriber disconnected")
			return
		case line, ok := <-events:
			if !ok {
				return
			}
			if _, err := conn.Write(line); err != nil {
				s.logger.Debug("IPC subscriber write failed", "error", err)
				return
			}
		}
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	ctx := s.ctx
	switch req.Command {
	case CommandWindowMoving:
		var p MovingPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", req.Command, err))
		}
		return s.result(nil, s.handler.PointerDown(ctx, p))
	case CommandWindowMoved:
		var p PointerUpPayload
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &p); err != nil {
				return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", req.Command, err))
			}
		}
		return s.result(nil, s.handler.PointerUp(ctx, p))
	case CommandSettingsChanged, CommandUpdateSettings:
		// Merge over defaults so a partial payload never zeroes a field.
		st := settings.Default()
		if err := json.Unmarshal(req.Payload, &st); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", req.Command, err))
		}
		if req.Command == CommandUpdateSettings {
			return s.result(nil, s.handler.UpdateSettings(ctx, st))
		}
		return s.result(nil, s.handler.ApplySettings(ctx, st))
	case CommandWindowResizing:
		return s.result(nil, s.handler.Resizing(ctx))
	case CommandShowSettings:
		return s.result(nil, s.handler.ShowSettings(ctx))
	case CommandShowAbout:
		return s.result(nil, s.handler.ShowAbout(ctx))
	case CommandGetStatus:
		status, err := s.handler.Status(ctx)
		return s.result(status, err)
	case CommandGetMonitors:
		monitors, err := s.handler.Monitors(ctx)
		return s.result(monitors, err)
	case CommandReload:
		s.logger.Info("IPC: received RELOAD command")
		return s.result(nil, s.handler.Reload(ctx))
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) result(data interface{}, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) bool {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return false
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		if !errors.Is(err, io.ErrClosedPipe) {
			s.logger.Debug("failed to send response", "error", err)
		}
		return false
	}
	return true
}

func (s *Server) track(conn net.Conn) bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	if s.shuttingDown {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.shutdownMu.Lock()
	delete(s.conns, conn)
	s.shutdownMu.Unlock()
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// Stop gracefully shuts down the IPC server and waits for open connections
// to finish.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	for conn := range s.conns {
		conn.Close()
	}
	s.shutdownMu.Unlock()

	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
