package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleZoneStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ ZoneStatusInput) (*mcpsdk.CallToolResult, ZoneStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, ZoneStatusOutput{}, fmt.Errorf("daemon unavailable: %w", err)
	}
	return nil, ZoneStatusOutput{
		DaemonRunning: status.DaemonRunning,
		UptimeSeconds: status.UptimeSeconds,
		Screens:       status.Engine.Screens,
		Windows:       status.Engine.Windows,
	}, nil
}

func (s *Server) handleListZones(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListZonesInput) (*mcpsdk.CallToolResult, ListZonesOutput, error) {
	data, err := s.client.ListZones()
	if err != nil {
		return nil, ListZonesOutput{}, fmt.Errorf("daemon unavailable: %w", err)
	}
	return nil, ListZonesOutput{Zones: data.Zones}, nil
}

func (s *Server) handleListScreens(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListScreensInput) (*mcpsdk.CallToolResult, ListScreensOutput, error) {
	data, err := s.client.ListScreens()
	if err != nil {
		return nil, ListScreensOutput{}, fmt.Errorf("daemon unavailable: %w", err)
	}
	return nil, ListScreensOutput{Screens: data.Screens}, nil
}

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, SnapWindowOutput, error) {
	zone := strings.TrimSpace(args.Zone)
	if zone == "" {
		return nil, SnapWindowOutput{}, fmt.Errorf("zone is required")
	}
	if err := s.client.Activate(zone); err != nil {
		return nil, SnapWindowOutput{}, err
	}
	return nil, SnapWindowOutput{Zone: zone}, nil
}

func (s *Server) handleFocusZone(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusZoneInput) (*mcpsdk.CallToolResult, FocusZoneOutput, error) {
	zone := strings.TrimSpace(args.Zone)
	if zone == "" {
		return nil, FocusZoneOutput{}, fmt.Errorf("zone is required")
	}
	if err := s.client.FocusCycle(zone); err != nil {
		return nil, FocusZoneOutput{}, err
	}
	return nil, FocusZoneOutput{Zone: zone}, nil
}

func (s *Server) handleListMemory(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMemoryInput) (*mcpsdk.CallToolResult, ListMemoryOutput, error) {
	data, err := s.client.ListMemory()
	if err != nil {
		return nil, ListMemoryOutput{}, fmt.Errorf("daemon unavailable: %w", err)
	}
	return nil, ListMemoryOutput{Entries: data.Entries}, nil
}

func (s *Server) handleForgetMemory(_ context.Context, _ *mcpsdk.CallToolRequest, args ForgetMemoryInput) (*mcpsdk.CallToolResult, ForgetMemoryOutput, error) {
	app := strings.TrimSpace(args.App)
	if app == "" {
		return nil, ForgetMemoryOutput{}, fmt.Errorf("app is required")
	}
	removed, err := s.client.ForgetMemory(app)
	if err != nil {
		return nil, ForgetMemoryOutput{}, err
	}
	return nil, ForgetMemoryOutput{App: app, Removed: removed}, nil
}
