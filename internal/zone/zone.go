// Package zone tracks named screen regions and which window occupies which
// tile. The Registry is the single source of truth for window placement; the
// matcher scores free windows against zones for automatic placement.
package zone

import (
	"fmt"
	"sort"

	"github.com/1broseidon/gridzones/internal/config"
	"github.com/1broseidon/gridzones/internal/geom"
	"github.com/1broseidon/gridzones/internal/grid"
	"github.com/1broseidon/gridzones/internal/platform"
)

// Tile is one target rectangle within a zone. Label keeps the token that
// produced it for status output.
type Tile struct {
	Label string
	Rect  geom.Rect
}

// Zone is a named region bound to one screen with an ordered tile list.
// Activating an already-assigned window steps through Tiles in order.
type Zone struct {
	ID          string
	Key         string
	ScreenID    int
	Tiles       []Tile
	Hotkey      string
	FocusHotkey string

	// windows indexes this zone's occupants by tile. The registry's global
	// map is authoritative; this is repaired from it when they disagree.
	windows map[platform.WindowID]int
}

// ID builds the canonical zone identifier for a key on a screen.
func ID(key string, screenID int) string {
	return fmt.Sprintf("%s_%d", key, screenID)
}

// New creates an empty zone for a key on a screen.
func New(key string, screenID int, tiles []Tile) *Zone {
	return &Zone{
		ID:       ID(key, screenID),
		Key:      key,
		ScreenID: screenID,
		Tiles:    tiles,
		windows:  make(map[platform.WindowID]int),
	}
}

// TileRect returns the rectangle of tile i.
func (z *Zone) TileRect(i int) (geom.Rect, bool) {
	if i < 0 || i >= len(z.Tiles) {
		return geom.Rect{}, false
	}
	return z.Tiles[i].Rect, true
}

// Windows returns this zone's occupants in stable order.
func (z *Zone) Windows() []platform.WindowID {
	out := make([]platform.WindowID, 0, len(z.windows))
	for w := range z.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TileOf returns the tile index a window occupies in this zone.
func (z *Zone) TileOf(w platform.WindowID) (int, bool) {
	i, ok := z.windows[w]
	return i, ok
}

// ResolveTiles resolves region tokens against a layout and maps each span to
// pixels on the frame. Tokens that do not fit the layout are skipped; they
// were validated at config load, so that only happens for degenerate layouts.
func ResolveTiles(regions []grid.Region, layout grid.Layout, frame geom.Rect, margins grid.Margins) []Tile {
	tiles := make([]Tile, 0, len(regions))
	for _, region := range regions {
		span, err := region.Resolve(layout)
		if err != nil {
			continue
		}
		tiles = append(tiles, Tile{
			Label: region.String(),
			Rect:  grid.SpanRect(span, layout, frame, margins),
		})
	}
	return tiles
}

// TileSource produces the tile list for one zone definition on a screen. A
// source may hand out a shared slice, so tiles are read-only after build.
type TileSource func(def config.ZoneDef, layout grid.Layout, frame geom.Rect, margins grid.Margins) []Tile

// BuildScreenZones constructs the zones for one screen: every configured
// zone definition resolved against the screen's layout and margins, plus the
// synthetic center zone unless the config defines its own with that key.
// A nil tiles source resolves directly; the engine installs a memoizing one.
func BuildScreenZones(screen platform.Screen, layout grid.Layout, cfg *config.Config, tiles TileSource) []*Zone {
	if tiles == nil {
		tiles = func(def config.ZoneDef, layout grid.Layout, frame geom.Rect, margins grid.Margins) []Tile {
			return ResolveTiles(def.Regions, layout, frame, margins)
		}
	}
	margins := cfg.GridMargins()
	zones := make([]*Zone, 0, len(cfg.Zones)+1)
	hasCenter := false
	for _, def := range cfg.Zones {
		if def.Key == grid.NamedCenter {
			hasCenter = true
		}
		z := New(def.Key, screen.ID, tiles(def, layout, screen.Frame, margins))
		z.Hotkey = def.Hotkey
		z.FocusHotkey = def.FocusHotkey
		zones = append(zones, z)
	}
	if !hasCenter {
		zones = append(zones, centerZone(screen))
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones
}

// centerSteps are the working-area percentages the synthetic center zone
// cycles through.
var centerSteps = []int{50, 70, 90}

// centerZone builds the synthetic centered zone: floating frames centered on
// the working area at increasing sizes.
func centerZone(screen platform.Screen) *Zone {
	z := New(grid.NamedCenter, screen.ID, nil)
	for _, pct := range centerSteps {
		w := screen.Frame.Width * pct / 100
		h := screen.Frame.Height * pct / 100
		z.Tiles = append(z.Tiles, Tile{
			Label: fmt.Sprintf("center-%d%%", pct),
			Rect: geom.Rect{
				X:      screen.Frame.X + (screen.Frame.Width-w)/2,
				Y:      screen.Frame.Y + (screen.Frame.Height-h)/2,
				Width:  w,
				Height: h,
			},
		})
	}
	return z
}
