package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/coverdock/internal/settings"
)

func (s *Server) handleGetWidgetState(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetWidgetStateInput) (*mcpsdk.CallToolResult, WidgetState, error) {
	status, err := s.widget.GetStatus()
	if err != nil {
		return nil, WidgetState{}, fmt.Errorf("failed to reach daemon: %w", err)
	}

	out := WidgetState{
		Attached:           status.Attached,
		Dragging:           status.State == "dragging",
		Bounds:             status.Bounds,
		IsOnLeft:           status.IsOnLeft,
		TrackInfoOpen:      status.TrackInfoOpen,
		Size:               status.Settings.Size,
		Centered:           status.Settings.IsCentered(),
		IsAlwaysOnTop:      status.Settings.IsAlwaysOnTop,
		IsVisibleInTaskbar: status.Settings.IsVisibleInTaskbar,
		SettingsPath:       status.SettingsPath,
		UptimeSeconds:      status.UptimeSeconds,
	}
	return nil, out, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.widget.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("failed to reach daemon: %w", err)
	}
	return nil, ListMonitorsOutput{Monitors: data.Monitors}, nil
}

func (s *Server) handleMoveWidget(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWidgetInput) (*mcpsdk.CallToolResult, SettingsOutput, error) {
	x, y := args.X, args.Y
	if args.Center {
		x, y = settings.PositionUnset, settings.PositionUnset
	} else if x == settings.PositionUnset && y == settings.PositionUnset {
		return nil, SettingsOutput{}, fmt.Errorf("%d,%d is reserved for centering; use center=true", x, y)
	}

	next, err := s.widget.UpdateSettings(func(cur settings.Settings) settings.Settings {
		return cur.WithPosition(x, y)
	})
	if err != nil {
		return nil, SettingsOutput{}, fmt.Errorf("failed to move widget: %w", err)
	}
	s.logger.Info("widget moved", "x", x, "y", y)
	return nil, settingsOutput(next), nil
}

func (s *Server) handleResizeWidget(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWidgetInput) (*mcpsdk.CallToolResult, SettingsOutput, error) {
	if args.Size <= 0 {
		return nil, SettingsOutput{}, fmt.Errorf("size must be positive, got %d", args.Size)
	}

	next, err := s.widget.UpdateSettings(func(cur settings.Settings) settings.Settings {
		return cur.WithSize(args.Size)
	})
	if err != nil {
		return nil, SettingsOutput{}, fmt.Errorf("failed to resize widget: %w", err)
	}
	s.logger.Info("widget resized", "size", args.Size)
	return nil, settingsOutput(next), nil
}

func (s *Server) handleSetAlwaysOnTop(_ context.Context, _ *mcpsdk.CallToolRequest, args SetAlwaysOnTopInput) (*mcpsdk.CallToolResult, SettingsOutput, error) {
	next, err := s.widget.UpdateSettings(func(cur settings.Settings) settings.Settings {
		cur.IsAlwaysOnTop = args.Enabled
		return cur
	})
	if err != nil {
		return nil, SettingsOutput{}, fmt.Errorf("failed to change stacking: %w", err)
	}
	return nil, settingsOutput(next), nil
}

func (s *Server) handleShowPanel(_ context.Context, _ *mcpsdk.CallToolRequest, args ShowPanelInput) (*mcpsdk.CallToolResult, ShowPanelOutput, error) {
	panel := strings.ToLower(strings.TrimSpace(args.Panel))

	var err error
	switch panel {
	case "settings":
		err = s.widget.ShowSettings()
	case "about":
		err = s.widget.ShowAbout()
	default:
		return nil, ShowPanelOutput{}, fmt.Errorf("unknown panel %q (want settings or about)", args.Panel)
	}
	if err != nil {
		return nil, ShowPanelOutput{}, fmt.Errorf("failed to show %s: %w", panel, err)
	}
	return nil, ShowPanelOutput{Panel: panel}, nil
}

func settingsOutput(s settings.Settings) SettingsOutput {
	return SettingsOutput{
		X:                  s.X,
		Y:                  s.Y,
		Size:               s.Size,
		IsAlwaysOnTop:      s.IsAlwaysOnTop,
		IsVisibleInTaskbar: s.IsVisibleInTaskbar,
	}
}
