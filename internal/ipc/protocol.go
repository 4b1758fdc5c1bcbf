package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/gridzones/internal/engine"
	"github.com/1broseidon/gridzones/internal/memory"
	"github.com/1broseidon/gridzones/internal/snapshot"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandActivate     CommandType = "ACTIVATE"
	CommandFocusCycle   CommandType = "FOCUS_CYCLE"
	CommandUnmanage     CommandType = "UNMANAGE"
	CommandRetile       CommandType = "RETILE"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandListZones    CommandType = "LIST_ZONES"
	CommandListScreens  CommandType = "LIST_SCREENS"
	CommandListMemory   CommandType = "LIST_MEMORY"
	CommandForgetMemory CommandType = "FORGET_MEMORY"
	CommandSnapshotSave CommandType = "SNAPSHOT_SAVE"
	CommandSnapshotLoad CommandType = "SNAPSHOT_LOAD"
	CommandSnapshotList CommandType = "SNAPSHOT_LIST"
	CommandReload       CommandType = "RELOAD"
	CommandShutdown     CommandType = "SHUTDOWN"
)

// Status values carried in Response.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request is one command sent over the socket, with an optional
// command-specific payload.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response carries either the command's result or an error message.
type Response struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ZonePayload names a zone for ACTIVATE and FOCUS_CYCLE.
type ZonePayload struct {
	Zone string `json:"zone"`
}

// AppPayload names an application for FORGET_MEMORY.
type AppPayload struct {
	App string `json:"app"`
}

// SnapshotPayload names a snapshot for SNAPSHOT_SAVE and SNAPSHOT_LOAD.
type SnapshotPayload struct {
	Name string `json:"name"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool          `json:"daemon_running"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Engine        engine.Status `json:"engine"`
}

// ZonesData represents the data returned by LIST_ZONES
type ZonesData struct {
	Zones []engine.ZoneInfo `json:"zones"`
}

// ScreensData represents the data returned by LIST_SCREENS
type ScreensData struct {
	Screens []engine.ScreenInfo `json:"screens"`
}

// MemoryData represents the data returned by LIST_MEMORY
type MemoryData struct {
	Entries []memory.Entry `json:"entries"`
}

// CountData reports how many items an operation touched.
type CountData struct {
	Count int `json:"count"`
}

// SnapshotsData represents the data returned by SNAPSHOT_LIST
type SnapshotsData struct {
	Snapshots []snapshot.Info `json:"snapshots"`
}

// okResponse wraps data in a success response. All payload types are our
// own structs, so a marshal failure is reported as an error response rather
// than propagated.
func okResponse(data any) *Response {
	resp := &Response{Status: StatusOK}
	if data == nil {
		return resp
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return errorResponse("failed to encode response: %v", err)
	}
	resp.Data = raw
	return resp
}

// errorResponse builds a failure response from a printf-style message.
func errorResponse(format string, args ...any) *Response {
	return &Response{Status: StatusError, Error: fmt.Sprintf(format, args...)}
}

func parseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}
