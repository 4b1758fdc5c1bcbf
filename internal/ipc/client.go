package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/gridzones/internal/runtimepath"
	"github.com/1broseidon/gridzones/internal/snapshot"
)

// Client talks to the daemon over its unix socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; send surfaces connection errors.
		socketPath = ""
	}
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// send issues one command with an optional payload and returns the decoded
// response. A StatusError response comes back as an error.
func (c *Client) send(cmd CommandType, payload any) (*Response, error) {
	req := Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", cmd, err)
		}
		req.Payload = raw
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	line, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	if _, err := conn.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends a command and decodes the response data into T.
func call[T any](c *Client, cmd CommandType, payload any) (*T, error) {
	resp, err := c.send(cmd, payload)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", cmd, err)
	}
	return &out, nil
}

// Activate sends the focused window to a zone.
func (c *Client) Activate(zoneKey string) error {
	_, err := c.send(CommandActivate, ZonePayload{Zone: zoneKey})
	return err
}

// FocusCycle focuses the next window in a zone.
func (c *Client) FocusCycle(zoneKey string) error {
	_, err := c.send(CommandFocusCycle, ZonePayload{Zone: zoneKey})
	return err
}

// Unmanage releases the focused window from its zone.
func (c *Client) Unmanage() error {
	_, err := c.send(CommandUnmanage, nil)
	return err
}

// Retile re-applies every managed window's tile.
func (c *Client) Retile() error {
	_, err := c.send(CommandRetile, nil)
	return err
}

// GetStatus retrieves daemon and engine state.
func (c *Client) GetStatus() (*StatusData, error) {
	return call[StatusData](c, CommandGetStatus, nil)
}

// ListZones retrieves every zone across all screens.
func (c *Client) ListZones() (*ZonesData, error) {
	return call[ZonesData](c, CommandListZones, nil)
}

// ListScreens retrieves the connected screens.
func (c *Client) ListScreens() (*ScreensData, error) {
	return call[ScreensData](c, CommandListScreens, nil)
}

// ListMemory retrieves stored position memory entries.
func (c *Client) ListMemory() (*MemoryData, error) {
	return call[MemoryData](c, CommandListMemory, nil)
}

// ForgetMemory drops stored placements for an application. Returns how many
// entries were removed.
func (c *Client) ForgetMemory(app string) (int, error) {
	data, err := call[CountData](c, CommandForgetMemory, AppPayload{App: app})
	if err != nil {
		return 0, err
	}
	return data.Count, nil
}

// SnapshotSave captures the current arrangement under a name. Returns how
// many applications were recorded.
func (c *Client) SnapshotSave(name string) (int, error) {
	return c.snapshotCount(CommandSnapshotSave, name)
}

// SnapshotLoad restores a named arrangement. Returns how many windows were
// placed.
func (c *Client) SnapshotLoad(name string) (int, error) {
	return c.snapshotCount(CommandSnapshotLoad, name)
}

func (c *Client) snapshotCount(cmd CommandType, name string) (int, error) {
	data, err := call[CountData](c, cmd, SnapshotPayload{Name: name})
	if err != nil {
		return 0, err
	}
	return data.Count, nil
}

// SnapshotList retrieves stored snapshots.
func (c *Client) SnapshotList() ([]snapshot.Info, error) {
	data, err := call[SnapshotsData](c, CommandSnapshotList, nil)
	if err != nil {
		return nil, err
	}
	return data.Snapshots, nil
}

// Reload asks the daemon to re-read its configuration.
func (c *Client) Reload() error {
	_, err := c.send(CommandReload, nil)
	return err
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown() error {
	_, err := c.send(CommandShutdown, nil)
	return err
}

// Ping checks if the daemon is responding.
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
