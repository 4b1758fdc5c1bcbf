package engine

import (
	"github.com/1broseidon/gridzones/internal/cache"
	"github.com/1broseidon/gridzones/internal/geom"
	"github.com/1broseidon/gridzones/internal/zone"
)

// Status is the engine snapshot served over IPC.
type Status struct {
	Screens     []ScreenInfo  `json:"screens"`
	Windows     []WindowInfo  `json:"windows"`
	LayoutCache cache.Metrics `json:"layout_cache"`
	TileCache   cache.Metrics `json:"tile_cache"`
}

// ScreenInfo describes one connected screen and the zones built on it.
type ScreenInfo struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Frame  geom.Rect  `json:"frame"`
	Full   geom.Rect  `json:"full"`
	Layout string     `json:"layout"`
	Rule   string     `json:"rule"`
	Zones  []ZoneInfo `json:"zones,omitempty"`
}

// ZoneInfo describes one zone, its tiles, and the windows parked in it.
type ZoneInfo struct {
	ID          string     `json:"id"`
	Key         string     `json:"key"`
	ScreenID    int        `json:"screen_id"`
	Hotkey      string     `json:"hotkey,omitempty"`
	FocusHotkey string     `json:"focus_hotkey,omitempty"`
	Tiles       []TileInfo `json:"tiles"`
	Windows     []uint32   `json:"windows,omitempty"`
}

// TileInfo is one slot of a zone.
type TileInfo struct {
	Index int       `json:"index"`
	Label string    `json:"label,omitempty"`
	Rect  geom.Rect `json:"rect"`
}

// WindowInfo describes one managed window.
type WindowInfo struct {
	ID      uint32    `json:"id"`
	App     string    `json:"app"`
	Zone    string    `json:"zone"`
	ZoneKey string    `json:"zone_key"`
	Tile    int       `json:"tile"`
	Frame   geom.Rect `json:"frame"`
}

// Status reports the current screens, zones, and managed windows.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Screens:     e.screenInfos(),
		Windows:     e.windowInfos(),
		LayoutCache: e.layouts.Metrics(),
		TileCache:   e.tiles.Metrics(),
	}
}

// ScreenList reports the connected screens without zone detail.
func (e *Engine) ScreenList() []ScreenInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	infos := e.screenInfos()
	for i := range infos {
		infos[i].Zones = nil
	}
	return infos
}

// ZoneList reports every zone across all screens.
func (e *Engine) ZoneList() []ZoneInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []ZoneInfo
	for _, z := range e.registry.Zones() {
		out = append(out, zoneInfo(z))
	}
	return out
}

func (e *Engine) screenInfos() []ScreenInfo {
	var out []ScreenInfo
	for _, s := range e.current {
		d := e.layoutFor(s)
		info := ScreenInfo{
			ID:     s.ID,
			Name:   s.Name,
			Frame:  s.Frame,
			Full:   s.Full,
			Layout: d.Layout.String(),
			Rule:   d.Rule,
		}
		for _, z := range e.registry.ZonesOnScreen(s.ID) {
			info.Zones = append(info.Zones, zoneInfo(z))
		}
		out = append(out, info)
	}
	return out
}

func (e *Engine) windowInfos() []WindowInfo {
	var out []WindowInfo
	for _, wa := range e.registry.AssignedWindows() {
		z, ok := e.registry.Zone(wa.Assignment.ZoneID)
		if !ok {
			continue
		}
		info := WindowInfo{
			ID:      uint32(wa.Window),
			App:     e.appName(wa.Window),
			Zone:    z.ID,
			ZoneKey: z.Key,
			Tile:    wa.Assignment.TileIndex,
		}
		if frame, err := e.windows.Frame(wa.Window); err == nil {
			info.Frame = frame
		}
		out = append(out, info)
	}
	return out
}

func zoneInfo(z *zone.Zone) ZoneInfo {
	info := ZoneInfo{
		ID:          z.ID,
		Key:         z.Key,
		ScreenID:    z.ScreenID,
		Hotkey:      z.Hotkey,
		FocusHotkey: z.FocusHotkey,
	}
	for i, t := range z.Tiles {
		info.Tiles = append(info.Tiles, TileInfo{Index: i, Label: t.Label, Rect: t.Rect})
	}
	for _, w := range z.Windows() {
		info.Windows = append(info.Windows, uint32(w))
	}
	return info
}
