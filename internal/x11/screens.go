package x11

import (
	"fmt"
	"slices"
	"sort"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/gridzones/internal/geom"
	"github.com/1broseidon/gridzones/internal/platform"
)

var _ platform.ScreenSource = (*Connection)(nil)

// Screens returns the active monitors, sorted by ID. Full is the raw CRTC
// geometry; Frame has panel and dock struts subtracted, falling back to the
// EWMH work area when no client advertises struts.
func (c *Connection) Screens() ([]platform.Screen, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("get screen resources: %w", err)
	}

	var screens []platform.Screen
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		full := geom.Rect{
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		}
		screens = append(screens, platform.Screen{
			ID:    i,
			Name:  name,
			Frame: full,
			Full:  full,
		})
	}
	if len(screens) == 0 {
		return nil, fmt.Errorf("no active monitors")
	}

	c.applyWorkAreas(screens)

	sort.Slice(screens, func(i, j int) bool { return screens[i].ID < screens[j].ID })
	return screens, nil
}

// applyWorkAreas shrinks each screen's Frame by the dock struts that touch
// it. When no dock advertises struts, every frame is intersected with the
// EWMH work area of the current desktop instead.
func (c *Connection) applyWorkAreas(screens []platform.Screen) {
	struts := c.dockStruts()
	if len(struts) == 0 {
		c.applyEwmhWorkArea(screens)
		return
	}
	for i := range screens {
		screens[i].Frame = insetByStruts(screens[i].Full, struts)
	}
}

// strutArea is the root-space rectangle a dock reserves, tagged with the
// screen edge it claims.
type strutArea struct {
	side string // "left", "right", "top", "bottom"
	rect geom.Rect
}

// dockStruts collects the reserved areas of every dock-type client, built
// from _NET_WM_STRUT_PARTIAL or, for older docks, _NET_WM_STRUT spanning
// the whole root edge.
func (c *Connection) dockStruts() []strutArea {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return nil
	}
	rootW := int(rootGeom.Width)
	rootH := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var struts []strutArea
	for _, win := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
		if err != nil || !slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}

		sp, err := ewmh.WmStrutPartialGet(c.XUtil, win)
		if err != nil {
			s, err := ewmh.WmStrutGet(c.XUtil, win)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftStartY: 0, LeftEndY: uint(rootH - 1),
				RightStartY: 0, RightEndY: uint(rootH - 1),
				TopStartX: 0, TopEndX: uint(rootW - 1),
				BottomStartX: 0, BottomEndX: uint(rootW - 1),
			}
		}
		struts = append(struts, strutAreas(sp, rootW, rootH)...)
	}
	return struts
}

func strutAreas(sp *ewmh.WmStrutPartial, rootW, rootH int) []strutArea {
	var out []strutArea
	if sp.Left > 0 {
		out = append(out, strutArea{side: "left", rect: geom.Rect{
			X: 0, Y: int(sp.LeftStartY),
			Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1,
		}})
	}
	if sp.Right > 0 {
		out = append(out, strutArea{side: "right", rect: geom.Rect{
			X: rootW - int(sp.Right), Y: int(sp.RightStartY),
			Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1,
		}})
	}
	if sp.Top > 0 {
		out = append(out, strutArea{side: "top", rect: geom.Rect{
			X: int(sp.TopStartX), Y: 0,
			Width: int(sp.TopEndX) - int(sp.TopStartX) + 1, Height: int(sp.Top),
		}})
	}
	if sp.Bottom > 0 {
		out = append(out, strutArea{side: "bottom", rect: geom.Rect{
			X: int(sp.BottomStartX), Y: rootH - int(sp.Bottom),
			Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1, Height: int(sp.Bottom),
		}})
	}
	return out
}

// insetByStruts trims full by the deepest strut touching each edge. The
// result never collapses below 1x1.
func insetByStruts(full geom.Rect, struts []strutArea) geom.Rect {
	var left, right, top, bottom int
	for _, s := range struts {
		overlap := full.Intersect(s.rect)
		if overlap.Empty() {
			continue
		}
		switch s.side {
		case "left":
			left = max(left, overlap.Width)
		case "right":
			right = max(right, overlap.Width)
		case "top":
			top = max(top, overlap.Height)
		case "bottom":
			bottom = max(bottom, overlap.Height)
		}
	}

	r := geom.Rect{
		X:      full.X + left,
		Y:      full.Y + top,
		Width:  full.Width - left - right,
		Height: full.Height - top - bottom,
	}
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}

func (c *Connection) applyEwmhWorkArea(screens []platform.Screen) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	idx := 0
	if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(workArea) {
		idx = int(desktop)
	}
	wa := geom.Rect{
		X:      int(workArea[idx].X),
		Y:      int(workArea[idx].Y),
		Width:  int(workArea[idx].Width),
		Height: int(workArea[idx].Height),
	}
	for i := range screens {
		if overlap := screens[i].Full.Intersect(wa); !overlap.Empty() {
			screens[i].Frame = overlap
		}
	}
}
