package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/gridzones/internal/geom"
	"github.com/1broseidon/gridzones/internal/platform"
)

// Watcher streams window lifecycle and screen change events from its own X
// connection, leaving the main connection free for requests. Callbacks run
// on the watcher goroutine; the engine serializes behind its own lock.
type Watcher struct {
	conn *xgb.Conn
	root xproto.Window

	OnMap          func(platform.WindowID)
	OnDestroy      func(platform.WindowID)
	OnConfigure    func(platform.WindowID, geom.Rect)
	OnScreenChange func()
}

// NewWatcher opens the event connection and subscribes to child events on
// the root window plus RandR screen changes.
func NewWatcher(display string) (*Watcher, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect event stream: %w", err)
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root

	err = xproto.ChangeWindowAttributesChecked(conn, root,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskSubstructureNotify}).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe to window events: %w", err)
	}

	if err := randr.Init(conn); err == nil {
		// Screen change notification is best effort: without RandR the
		// daemon still works, it just cannot react to monitor changes.
		randr.SelectInput(conn, root, randr.NotifyMaskScreenChange)
	}

	return &Watcher{conn: conn, root: root}, nil
}

// Run dispatches events until the connection closes (blocking).
func (w *Watcher) Run() {
	for {
		ev, err := w.conn.WaitForEvent()
		if ev == nil && err == nil {
			return // connection closed
		}
		if err != nil {
			continue
		}

		switch e := ev.(type) {
		case xproto.MapNotifyEvent:
			if e.OverrideRedirect {
				continue
			}
			if w.OnMap != nil {
				w.OnMap(platform.WindowID(e.Window))
			}
		case xproto.DestroyNotifyEvent:
			if w.OnDestroy != nil {
				w.OnDestroy(platform.WindowID(e.Window))
			}
		case xproto.ConfigureNotifyEvent:
			if e.OverrideRedirect {
				continue
			}
			if w.OnConfigure != nil {
				w.OnConfigure(platform.WindowID(e.Window), geom.Rect{
					X:      int(e.X),
					Y:      int(e.Y),
					Width:  int(e.Width),
					Height: int(e.Height),
				})
			}
		case randr.ScreenChangeNotifyEvent:
			if w.OnScreenChange != nil {
				w.OnScreenChange()
			}
		}
	}
}

// Close tears down the event connection, unblocking Run.
func (w *Watcher) Close() {
	w.conn.Close()
}
