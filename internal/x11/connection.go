// Package x11 implements the platform window and screen operations against
// an X server. One Connection serves requests and hotkeys; a Watcher on its
// own connection feeds window and screen events to the engine.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection connects to the X server named by the DISPLAY environment
// variable and initializes the keybind machinery for global hotkeys.
func NewConnection() (*Connection, error) {
	return newConnection(xgbutil.NewConn())
}

// NewConnectionDisplay connects to a specific display. An empty display
// falls back to the environment.
func NewConnectionDisplay(display string) (*Connection, error) {
	if display == "" {
		return NewConnection()
	}
	return newConnection(xgbutil.NewConnDisplay(display))
}

func newConnection(xu *xgbutil.XUtil, err error) (*Connection, error) {
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	keybind.Initialize(xu)
	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop runs the X11 event loop until Quit is called (blocking). Hotkey
// callbacks fire from here.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit stops the event loop.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close disconnects from the X server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
