package mcp

import (
	"github.com/1broseidon/gridzones/internal/engine"
	"github.com/1broseidon/gridzones/internal/memory"
)

// ZoneStatusInput is the input for the zone_status tool.
type ZoneStatusInput struct{}

// ZoneStatusOutput is the output for the zone_status tool.
type ZoneStatusOutput struct {
	DaemonRunning bool                `json:"daemon_running"`
	UptimeSeconds int64               `json:"uptime_seconds"`
	Screens       []engine.ScreenInfo `json:"screens"`
	Windows       []engine.WindowInfo `json:"windows"`
}

// ListZonesInput is the input for the list_zones tool.
type ListZonesInput struct{}

// ListZonesOutput is the output for the list_zones tool.
type ListZonesOutput struct {
	Zones []engine.ZoneInfo `json:"zones"`
}

// ListScreensInput is the input for the list_screens tool.
type ListScreensInput struct{}

// ListScreensOutput is the output for the list_screens tool.
type ListScreensOutput struct {
	Screens []engine.ScreenInfo `json:"screens"`
}

// SnapWindowInput is the input for the snap_window tool.
type SnapWindowInput struct {
	Zone string `json:"zone" jsonschema:"required,Zone key to snap the focused window into (e.g. left, right, full). Repeat calls cycle through the zone's tile sizes."`
}

// SnapWindowOutput is the output for the snap_window tool.
type SnapWindowOutput struct {
	Zone string `json:"zone"`
}

// FocusZoneInput is the input for the focus_zone tool.
type FocusZoneInput struct {
	Zone string `json:"zone" jsonschema:"required,Zone key whose windows receive focus. Repeat calls cycle through the zone's windows."`
}

// FocusZoneOutput is the output for the focus_zone tool.
type FocusZoneOutput struct {
	Zone string `json:"zone"`
}

// ListMemoryInput is the input for the list_memory tool.
type ListMemoryInput struct{}

// ListMemoryOutput is the output for the list_memory tool.
type ListMemoryOutput struct {
	Entries []memory.Entry `json:"entries"`
}

// ForgetMemoryInput is the input for the forget_memory tool.
type ForgetMemoryInput struct {
	App string `json:"app" jsonschema:"required,Application class whose remembered positions are removed (matched case-insensitively)"`
}

// ForgetMemoryOutput is the output for the forget_memory tool.
type ForgetMemoryOutput struct {
	App     string `json:"app"`
	Removed int    `json:"removed"`
}
