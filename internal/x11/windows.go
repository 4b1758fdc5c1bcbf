package x11

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/gridzones/internal/geom"
	"github.com/1broseidon/gridzones/internal/platform"
)

var _ platform.WindowOps = (*Connection)(nil)

// List returns the manageable windows: normal-type clients on the current
// desktop that are neither hidden nor fullscreen, sorted by window ID.
func (c *Connection) List() ([]platform.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("get client list: %w", err)
	}

	currentDesktop, desktopErr := ewmh.CurrentDesktopGet(c.XUtil)
	hasCurrentDesktop := desktopErr == nil

	windows := make([]platform.Window, 0, len(clients))
	for _, id := range clients {
		if !c.isNormalWindow(id) || c.skipByState(id) {
			continue
		}
		if hasCurrentDesktop {
			// 0xFFFFFFFF marks sticky windows, visible on every desktop.
			desktop, err := ewmh.WmDesktopGet(c.XUtil, id)
			if err == nil && desktop != 0xFFFFFFFF && desktop != currentDesktop {
				continue
			}
		}
		frame, err := c.Frame(platform.WindowID(id))
		if err != nil {
			continue
		}
		windows = append(windows, platform.Window{
			ID:    platform.WindowID(id),
			App:   c.appName(id),
			Title: c.title(id),
			Frame: frame,
		})
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].ID < windows[j].ID })
	return windows, nil
}

// Frame returns a window's geometry in root coordinates.
func (c *Connection) Frame(id platform.WindowID) (geom.Rect, error) {
	win := xproto.Window(id)
	g, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("%w: %v", platform.ErrWindowGone, err)
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("%w: %v", platform.ErrWindowGone, err)
	}
	return geom.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(g.Width),
		Height: int(g.Height),
	}, nil
}

// SetFrame moves and resizes a window, unmaximizing it first so the WM
// honors the new geometry.
func (c *Connection) SetFrame(id platform.WindowID, r geom.Rect) error {
	win := xproto.Window(id)
	c.unmaximize(win)

	// EWMH moveresize first for WM cooperation, direct configure as the
	// fallback.
	if err := ewmh.MoveresizeWindow(c.XUtil, win, r.X, r.Y, r.Width, r.Height); err != nil {
		xwindow.New(c.XUtil, win).MoveResize(r.X, r.Y, r.Width, r.Height)
	}
	return nil
}

// IsValid reports whether the window still exists.
func (c *Connection) IsValid(id platform.WindowID) bool {
	_, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(xproto.Window(id))).Reply()
	return err == nil
}

// AppName returns the window's application name from its WM_CLASS class
// field.
func (c *Connection) AppName(id platform.WindowID) (string, error) {
	wmClass, err := icccm.WmClassGet(c.XUtil, xproto.Window(id))
	if err != nil {
		return "", fmt.Errorf("%w: %v", platform.ErrWindowGone, err)
	}
	return strings.TrimSpace(wmClass.Class), nil
}

// Focus activates and raises a window via _NET_ACTIVE_WINDOW. The message
// is built by hand: the ewmh request helper panics on a uint type assertion.
func (c *Connection) Focus(id platform.WindowID) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // direct user action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(id),
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// Focused returns the active window, if any.
func (c *Connection) Focused() (platform.WindowID, bool) {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil || win == 0 {
		return 0, false
	}
	return platform.WindowID(win), true
}

// unmaximize drops maximized state so a later configure sticks. Windows
// that do not support the state are left alone.
func (c *Connection) unmaximize(win xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			ewmh.WmStateReq(c.XUtil, win, 0, state)
		}
	}
}

// isNormalWindow reports whether a window is a regular application window
// rather than a desktop, dock, splash, or notification surface.
func (c *Connection) isNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		// No type property set, assume normal.
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

func (c *Connection) skipByState(win xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN", "_NET_WM_STATE_FULLSCREEN":
			return true
		}
	}
	return false
}

func (c *Connection) appName(win xproto.Window) string {
	name, err := c.AppName(platform.WindowID(win))
	if err != nil {
		return ""
	}
	return name
}

func (c *Connection) title(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, win); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}
