package zone

import (
	"errors"
	"regexp"
	"sort"

	"github.com/1broseidon/gridzones/internal/geom"
	"github.com/1broseidon/gridzones/internal/platform"
)

// ErrNoTiles is returned by Activate for a zone with an empty tile list.
// Callers log it and leave window state untouched.
var ErrNoTiles = errors.New("zone has no tiles")

// Assignment records which zone and tile a window occupies.
type Assignment struct {
	ZoneID    string
	TileIndex int
}

// TransitionKind classifies what an activation did.
type TransitionKind int

const (
	// TransitionAssign placed a previously unassigned window.
	TransitionAssign TransitionKind = iota
	// TransitionMove pulled the window out of another zone.
	TransitionMove
	// TransitionCycle advanced the window to its zone's next tile.
	TransitionCycle
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionAssign:
		return "assign"
	case TransitionMove:
		return "move"
	case TransitionCycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// Placement is the outcome of an activation: where the window now belongs
// and the rectangle the caller must apply.
type Placement struct {
	Zone      *Zone
	TileIndex int
	Rect      geom.Rect
	Kind      TransitionKind
	FromZone  string // set for TransitionMove
}

// WindowAssignment pairs a window with its assignment, for listings and
// snapshots.
type WindowAssignment struct {
	Window     platform.WindowID
	Assignment Assignment
}

// Repair describes one inconsistency fixed by Reconcile.
type Repair struct {
	Window platform.WindowID
	ZoneID string
	Action string
}

// Registry owns every zone and the global window assignment state. The
// global map is the source of truth; each zone's local index is derived and
// repairable. Not safe for concurrent use: the engine serializes all access.
type Registry struct {
	zones   map[string]*Zone
	windows map[platform.WindowID]Assignment
}

func NewRegistry() *Registry {
	return &Registry{
		zones:   make(map[string]*Zone),
		windows: make(map[platform.WindowID]Assignment),
	}
}

// SetZones replaces the zone set, reattaching existing assignments whose
// zone ID survives. Assignments to vanished or now-empty zones are dropped;
// out-of-range tile indexes reset to the first tile. The dropped windows are
// returned so the caller can try to remap them.
func (r *Registry) SetZones(zones []*Zone) []platform.WindowID {
	r.zones = make(map[string]*Zone, len(zones))
	for _, z := range zones {
		if z.windows == nil {
			z.windows = make(map[platform.WindowID]int)
		}
		r.zones[z.ID] = z
	}

	var dropped []platform.WindowID
	for _, wa := range r.AssignedWindows() {
		z, ok := r.zones[wa.Assignment.ZoneID]
		if !ok || len(z.Tiles) == 0 {
			delete(r.windows, wa.Window)
			dropped = append(dropped, wa.Window)
			continue
		}
		idx := wa.Assignment.TileIndex
		if idx < 0 || idx >= len(z.Tiles) {
			idx = 0
		}
		r.windows[wa.Window] = Assignment{ZoneID: z.ID, TileIndex: idx}
		z.windows[wa.Window] = idx
	}
	return dropped
}

// Zones returns all zones sorted by ID.
func (r *Registry) Zones() []*Zone {
	out := make([]*Zone, 0, len(r.zones))
	for _, z := range r.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Zone returns the zone with the given full ID.
func (r *Registry) Zone(id string) (*Zone, bool) {
	z, ok := r.zones[id]
	return z, ok
}

// ZonesOnScreen returns the zones bound to a screen, sorted by ID.
func (r *Registry) ZonesOnScreen(screenID int) []*Zone {
	var out []*Zone
	for _, z := range r.Zones() {
		if z.ScreenID == screenID {
			out = append(out, z)
		}
	}
	return out
}

var screenSuffixed = regexp.MustCompile(`^.+_[0-9]+$`)

// Resolve finds the zone a key refers to on a screen. Lookup precedence:
// the exact key_<screenID> form, then any screen-suffixed zone with that key
// living on the screen, then the key taken as a full zone ID.
func (r *Registry) Resolve(key string, screenID int) (*Zone, bool) {
	if z, ok := r.zones[ID(key, screenID)]; ok {
		return z, true
	}
	for _, z := range r.Zones() {
		if z.Key == key && z.ScreenID == screenID && screenSuffixed.MatchString(z.ID) {
			return z, true
		}
	}
	if z, ok := r.zones[key]; ok {
		return z, true
	}
	return nil, false
}

// Activate runs the assignment state machine for a window against a zone:
// unassigned windows take the first tile, windows from another zone move
// atomically, and windows already here cycle to the next tile. The caller
// applies the returned rectangle.
func (r *Registry) Activate(w platform.WindowID, z *Zone) (Placement, error) {
	if len(z.Tiles) == 0 {
		return Placement{}, ErrNoTiles
	}

	p := Placement{Zone: z, Kind: TransitionAssign}
	if cur, ok := r.windows[w]; ok {
		if cur.ZoneID == z.ID {
			p.Kind = TransitionCycle
			p.TileIndex = (cur.TileIndex + 1) % len(z.Tiles)
		} else {
			p.Kind = TransitionMove
			p.FromZone = cur.ZoneID
			if old, ok := r.zones[cur.ZoneID]; ok {
				delete(old.windows, w)
			}
		}
	}

	r.windows[w] = Assignment{ZoneID: z.ID, TileIndex: p.TileIndex}
	z.windows[w] = p.TileIndex
	p.Rect = z.Tiles[p.TileIndex].Rect
	return p, nil
}

// Place puts a window at a specific tile of a zone, used when replaying
// remembered placements, remapping after display changes, and loading
// snapshots. Out-of-range tiles fall back to the first. Unlike Activate it
// never cycles.
func (r *Registry) Place(w platform.WindowID, z *Zone, tile int) (Placement, error) {
	if len(z.Tiles) == 0 {
		return Placement{}, ErrNoTiles
	}
	if tile < 0 || tile >= len(z.Tiles) {
		tile = 0
	}

	p := Placement{Zone: z, TileIndex: tile, Kind: TransitionAssign}
	if cur, ok := r.windows[w]; ok && cur.ZoneID != z.ID {
		p.Kind = TransitionMove
		p.FromZone = cur.ZoneID
		if old, ok := r.zones[cur.ZoneID]; ok {
			delete(old.windows, w)
		}
	}

	r.windows[w] = Assignment{ZoneID: z.ID, TileIndex: tile}
	z.windows[w] = tile
	p.Rect = z.Tiles[tile].Rect
	return p, nil
}

// Remove clears a window's assignment. Idempotent; reports whether anything
// was removed.
func (r *Registry) Remove(w platform.WindowID) bool {
	cur, ok := r.windows[w]
	if !ok {
		return false
	}
	if z, ok := r.zones[cur.ZoneID]; ok {
		delete(z.windows, w)
	}
	delete(r.windows, w)
	return true
}

// Assignment returns a window's current assignment.
func (r *Registry) Assignment(w platform.WindowID) (Assignment, bool) {
	a, ok := r.windows[w]
	return a, ok
}

// AssignedWindows returns every assignment sorted by window ID.
func (r *Registry) AssignedWindows() []WindowAssignment {
	out := make([]WindowAssignment, 0, len(r.windows))
	for w, a := range r.windows {
		out = append(out, WindowAssignment{Window: w, Assignment: a})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Window < out[j].Window })
	return out
}

// Reconcile repairs zone-local indexes against the authoritative global
// map: stale local entries are detached, missing ones reattached, and
// assignments pointing at vanished zones or tiles dropped or clamped. The
// repairs are returned for logging.
func (r *Registry) Reconcile() []Repair {
	var repairs []Repair

	for _, z := range r.Zones() {
		for _, w := range z.Windows() {
			a, ok := r.windows[w]
			if !ok || a.ZoneID != z.ID {
				delete(z.windows, w)
				repairs = append(repairs, Repair{Window: w, ZoneID: z.ID, Action: "detached"})
			}
		}
	}

	for _, wa := range r.AssignedWindows() {
		w, a := wa.Window, wa.Assignment
		z, ok := r.zones[a.ZoneID]
		if !ok || len(z.Tiles) == 0 {
			delete(r.windows, w)
			repairs = append(repairs, Repair{Window: w, ZoneID: a.ZoneID, Action: "dropped"})
			continue
		}
		if a.TileIndex < 0 || a.TileIndex >= len(z.Tiles) {
			a.TileIndex = 0
			r.windows[w] = a
			z.windows[w] = 0
			repairs = append(repairs, Repair{Window: w, ZoneID: a.ZoneID, Action: "tile-clamped"})
			continue
		}
		if got, ok := z.windows[w]; !ok || got != a.TileIndex {
			z.windows[w] = a.TileIndex
			repairs = append(repairs, Repair{Window: w, ZoneID: a.ZoneID, Action: "reattached"})
		}
	}
	return repairs
}
