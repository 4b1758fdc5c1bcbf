// Package mcp exposes zone inspection and control to MCP clients over stdio.
// Every tool proxies to a running daemon through the IPC socket, so the MCP
// server itself holds no window state.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/gridzones/internal/ipc"
)

const (
	ServerName    = "gridzones"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for zone control.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates an MCP server backed by the daemon's IPC socket.
func NewServer() *Server {
	s := &Server{client: ipc.NewClient()}

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
		Name:        "zone_status",
		Description: "Get the daemon's current state: connected screens with their chosen grid layouts, and every zone-managed window with its zone, tile, and frame.",
	}, s.handleZoneStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_zones",
		Description: "List all zones across all screens, including each zone's tile rectangles, hotkeys, and currently managed windows.",
	}, s.handleListZones)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_screens",
		Description: "List connected screens with their usable frame, full pixel bounds, and the grid layout selected for each.",
	}, s.handleListScreens)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Snap the currently focused window into a zone. Calling again with the same zone cycles the window through the zone's tile sizes.",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_zone",
		Description: "Move keyboard focus to a window in the given zone. Repeat calls cycle through the zone's windows.",
	}, s.handleFocusZone)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_memory",
		Description: "List remembered window positions: per-app, per-screen zone assignments and frames that the daemon replays when an application reopens.",
	}, s.handleListMemory)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "forget_memory",
		Description: "Remove all remembered positions for an application, so its next window is placed by the auto-tile matcher instead of replay.",
	}, s.handleForgetMemory)
}
