// Package platform defines the seams between the zone engine and the display
// server: window manipulation, screen discovery, and deferred execution. The
// production implementation lives in internal/x11; tests substitute fakes.
package platform

import (
	"errors"

	"github.com/1broseidon/gridzones/internal/geom"
)

// WindowID identifies a top-level window. On X11 this is the XID.
type WindowID uint32

// Screen is one connected display.
type Screen struct {
	ID   int
	Name string
	// Frame is the usable working area with panels and docks subtracted.
	// Tile math happens in this space.
	Frame geom.Rect
	// Full is the complete pixel bounds. Layout selection heuristics use
	// this, not the working area.
	Full geom.Rect
}

// Window is a snapshot of one manageable window.
type Window struct {
	ID    WindowID
	App   string
	Title string
	Frame geom.Rect
}

// ErrWindowGone is returned by WindowOps methods when the window no longer
// exists. Operations on vanished windows are dropped, never fatal.
var ErrWindowGone = errors.New("window no longer exists")

// WindowOps manipulates and inspects windows.
type WindowOps interface {
	// List returns the manageable windows across all screens.
	List() ([]Window, error)
	Frame(id WindowID) (geom.Rect, error)
	SetFrame(id WindowID, r geom.Rect) error
	// IsValid reports whether the window still exists and is manageable.
	IsValid(id WindowID) bool
	AppName(id WindowID) (string, error)
	Focus(id WindowID) error
	// Focused returns the currently focused window, if any.
	Focused() (WindowID, bool)
}

// ScreenSource reports the connected screens.
type ScreenSource interface {
	Screens() ([]Screen, error)
}

// ScreenFor picks the screen owning a frame by center-point containment,
// falling back to the largest overlap and then the first screen. ok is false
// only when screens is empty.
func ScreenFor(screens []Screen, frame geom.Rect) (Screen, bool) {
	if len(screens) == 0 {
		return Screen{}, false
	}
	cx, cy := frame.Center()
	for _, s := range screens {
		if s.Full.ContainsPoint(int(cx), int(cy)) {
			return s, true
		}
	}
	best := screens[0]
	bestArea := 0
	for _, s := range screens {
		if a := s.Full.OverlapArea(frame); a > bestArea {
			best, bestArea = s, a
		}
	}
	return best, true
}

// ScreenByID returns the screen with the given ID.
func ScreenByID(screens []Screen, id int) (Screen, bool) {
	for _, s := range screens {
		if s.ID == id {
			return s, true
		}
	}
	return Screen{}, false
}
