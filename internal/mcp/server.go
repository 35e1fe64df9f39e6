// Package mcp exposes the running widget daemon to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/coverdock/internal/ipc"
	"github.com/1broseidon/coverdock/internal/settings"
)

const (
	ServerName    = "coverdock"
	ServerVersion = "0.1.0"
)

// Widget is the daemon as seen by the tools. *ipc.Client implements it.
type Widget interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	UpdateSettings(fn func(settings.Settings) settings.Settings) (settings.Settings, error)
	ShowSettings() error
	ShowAbout() error
}

var _ Widget = (*ipc.Client)(nil)

// Server is the MCP server for widget control.
type Server struct {
	mcpServer *mcpsdk.Server
	widget    Widget
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards to the daemon through widget.
func NewServer(widget Widget, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		widget: widget,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_widget_state",
		Description: "Report whether the widget window is attached, its bounds, which half of the display it is on, whether track info is open, and the current settings.",
	}, s.handleGetWidgetState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the connected monitors with their full bounds and the usable area left after panels and docks.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_widget",
		Description: "Move the widget so its top-left corner is at x,y in screen coordinates, which may be negative on multi-monitor layouts. The pair -1,-1 is reserved. Pass center=true instead to center it on its current monitor. The position is saved.",
	}, s.handleMoveWidget)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_widget",
		Description: "Set the side length of the square widget in pixels. The daemon clamps it to the configured minimum and maximum. The size is saved.",
	}, s.handleResizeWidget)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_always_on_top",
		Description: "Keep the widget above other windows, or let it be stacked normally.",
	}, s.handleSetAlwaysOnTop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_panel",
		Description: "Ask the widget to open one of its dialogs: \"settings\" or \"about\".",
	}, s.handleShowPanel)
}
