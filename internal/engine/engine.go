// Package engine orchestrates zones, windows, and screens. Every entry
// point, whether an IPC command, a hotkey, an X event, or a timer callback,
// takes the single engine lock, runs to completion, and releases it. All
// failures are logged and degrade one operation; nothing here panics the
// daemon.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/gridzones/internal/cache"
	"github.com/1broseidon/gridzones/internal/config"
	"github.com/1broseidon/gridzones/internal/eventlog"
	"github.com/1broseidon/gridzones/internal/geom"
	"github.com/1broseidon/gridzones/internal/grid"
	"github.com/1broseidon/gridzones/internal/memory"
	"github.com/1broseidon/gridzones/internal/platform"
	"github.com/1broseidon/gridzones/internal/zone"
)

// ErrNoFocusedWindow is returned by focused-window operations when no
// window has focus.
var ErrNoFocusedWindow = errors.New("no focused window")

// ErrUnknownZone is returned when a zone key resolves to nothing on the
// relevant screen.
var ErrUnknownZone = errors.New("unknown zone")

const (
	// echoWindow is how long a SetFrame's expected geometry suppresses
	// the configure events it provokes.
	echoWindow = time.Second
	// echoTolerancePX is the slack allowed when matching an echo against
	// the expected frame.
	echoTolerancePX = 2
	// maxVerifyAttempts bounds the settle-and-verify loop for problem
	// apps.
	maxVerifyAttempts = 10
	// maxVerifyDelay caps the growing delay between verify attempts.
	maxVerifyDelay = time.Second
)

// PlacementStore is the persistence seam for position memory. *memory.Store
// satisfies it; tests substitute fakes.
type PlacementStore interface {
	Record(ctx context.Context, e memory.Entry) error
	Lookup(ctx context.Context, app string, screenID int) (memory.Entry, bool, error)
	LookupAny(ctx context.Context, app string) ([]memory.Entry, error)
	Forget(ctx context.Context, app string) (int, error)
	Entries(ctx context.Context) ([]memory.Entry, error)
	Prune(ctx context.Context, maxAge time.Duration) (int, error)
}

// Deps carries the engine's collaborators. Store and Actions may be nil.
type Deps struct {
	Config  *config.Config
	Windows platform.WindowOps
	Screens platform.ScreenSource
	Sched   platform.Scheduler
	Store   PlacementStore
	Actions *eventlog.Log
	Log     *slog.Logger
}

// expectedFrame is a recently requested geometry used to tell engine-caused
// configure events from user moves.
type expectedFrame struct {
	rect     geom.Rect
	deadline time.Time
}

// remapEntry snapshots one managed window before a display change so phase
// three can find it a new home.
type remapEntry struct {
	id          platform.WindowID
	app         string
	zoneKey     string
	tile        int
	frame       geom.Rect
	screenFrame geom.Rect
}

// Engine is the daemon core. All exported methods are safe for concurrent
// use.
type Engine struct {
	mu sync.Mutex

	cfg     *config.Config
	windows platform.WindowOps
	screens platform.ScreenSource
	sched   platform.Scheduler
	store   PlacementStore
	actions *eventlog.Log
	log     *slog.Logger

	registry *zone.Registry
	current  []platform.Screen
	layouts  *cache.Memo[cache.ScreenKey, grid.Decision]
	tiles    *cache.Memo[tileKey, []zone.Tile]

	debounce  map[platform.WindowID]platform.Handle
	verify    map[platform.WindowID]platform.Handle
	expected  map[platform.WindowID]expectedFrame
	preChange []remapEntry

	// displayGen invalidates in-flight display change phases when a newer
	// change arrives.
	displayGen uint64
}

// New assembles an engine. Call Rescan before use to discover screens and
// build zones.
func New(d Deps) *Engine {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		cfg:      d.Config,
		windows:  d.Windows,
		screens:  d.Screens,
		sched:    d.Sched,
		store:    d.Store,
		actions:  d.Actions,
		log:      log,
		registry: zone.NewRegistry(),
		layouts:  cache.New[cache.ScreenKey, grid.Decision](cache.DefaultSize),
		tiles:    cache.New[tileKey, []zone.Tile](cache.DefaultSize),
		debounce: make(map[platform.WindowID]platform.Handle),
		verify:   make(map[platform.WindowID]platform.Handle),
		expected: make(map[platform.WindowID]expectedFrame),
	}
}

// Rescan rediscovers screens and rebuilds every zone, keeping assignments
// whose zone survives.
func (e *Engine) Rescan() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rebuild()
}

// Reload swaps in a new configuration and rebuilds zones against it.
func (e *Engine) Reload(cfg *config.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.layouts.Purge()
	e.tiles.Purge()
	e.rebuild()
	e.log.Info("configuration reloaded", "zones", len(e.registry.Zones()))
}

// Close cancels outstanding timers.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, h := range e.debounce {
		h.Cancel()
		delete(e.debounce, id)
	}
	for id, h := range e.verify {
		h.Cancel()
		delete(e.verify, id)
	}
}

// rebuild queries screens and replaces the zone set. Callers hold the lock.
func (e *Engine) rebuild() {
	screens, err := e.screens.Screens()
	if err != nil {
		e.log.Error("screen discovery failed", "error", err)
		return
	}
	e.current = screens

	var all []*zone.Zone
	for _, s := range screens {
		dec := e.layoutFor(s)
		zs := zone.BuildScreenZones(s, dec.Layout, e.cfg, e.tilesFor)
		e.log.Debug("screen zones built",
			"screen", s.Name, "layout", dec.Layout.String(), "rule", dec.Rule, "zones", len(zs))
		all = append(all, zs...)
	}

	dropped := e.registry.SetZones(all)
	for _, w := range dropped {
		e.log.Warn("assignment dropped, zone vanished", "window", w)
	}
}

// layoutFor memoizes layout selection per screen geometry.
func (e *Engine) layoutFor(s platform.Screen) grid.Decision {
	key := cache.ScreenKey{Name: s.Name, Width: s.Full.Width, Height: s.Full.Height}
	if d, ok := e.layouts.Get(key); ok {
		return d
	}
	d := e.cfg.Selector().Select(s.Name, s.Full)
	e.layouts.Add(key, d)
	return d
}

// tileKey identifies one zone's resolved tile list. Identical definition,
// layout, frame, and margins yield identical pixels.
type tileKey struct {
	zone    string
	layout  grid.Layout
	frame   geom.Rect
	margins grid.Margins
}

// tilesFor memoizes region resolution per zone, layout, and screen frame.
// Reload purges the cache, so a key never outlives its zone definition.
func (e *Engine) tilesFor(def config.ZoneDef, layout grid.Layout, frame geom.Rect, margins grid.Margins) []zone.Tile {
	key := tileKey{zone: def.Key, layout: layout, frame: frame, margins: margins}
	if tiles, ok := e.tiles.Get(key); ok {
		return tiles
	}
	tiles := zone.ResolveTiles(def.Regions, layout, frame, margins)
	e.tiles.Add(key, tiles)
	return tiles
}

// applyFrame moves a window and schedules verification. Problem apps get
// the full settle-and-verify loop; everything else one corrective pass.
// Callers hold the lock.
func (e *Engine) applyFrame(id platform.WindowID, app string, rect geom.Rect) {
	if !e.windows.IsValid(id) {
		e.log.Debug("skip apply, window gone", "window", id)
		return
	}
	e.noteExpected(id, rect)
	if err := e.windows.SetFrame(id, rect); err != nil {
		e.log.Warn("set frame failed", "window", id, "app", app, "error", err)
		return
	}

	budget := 1
	if e.cfg.IsProblemApp(app) {
		budget = maxVerifyAttempts
	}
	e.scheduleVerify(id, app, rect, 1, budget)
}

func (e *Engine) scheduleVerify(id platform.WindowID, app string, want geom.Rect, attempt, budget int) {
	if h, ok := e.verify[id]; ok {
		h.Cancel()
	}
	e.verify[id] = e.sched.After(verifyDelay(attempt), func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.verify, id)
		e.verifyStep(id, app, want, attempt, budget)
	})
}

// verifyStep re-reads the window and re-applies the frame if the app moved
// it. Callers hold the lock.
func (e *Engine) verifyStep(id platform.WindowID, app string, want geom.Rect, attempt, budget int) {
	got, err := e.windows.Frame(id)
	if err != nil {
		return // window gone, nothing to verify
	}
	if got.ApproxEqual(want, e.cfg.SettleTolerancePX) {
		return
	}

	e.noteExpected(id, want)
	if err := e.windows.SetFrame(id, want); err != nil {
		e.log.Warn("re-apply failed", "window", id, "app", app, "error", err)
		return
	}
	if attempt >= budget {
		e.log.Warn("window did not settle",
			"window", id, "app", app, "attempts", attempt,
			"dx", got.X-want.X, "dy", got.Y-want.Y,
			"dw", got.Width-want.Width, "dh", got.Height-want.Height)
		return
	}
	e.scheduleVerify(id, app, want, attempt+1, budget)
}

// verifyDelay grows with each attempt: 100ms, 200ms, ... capped at one
// second.
func verifyDelay(attempt int) time.Duration {
	d := time.Duration(attempt) * 100 * time.Millisecond
	if d > maxVerifyDelay {
		d = maxVerifyDelay
	}
	return d
}

// noteExpected records the geometry a SetFrame should produce so the
// configure events it triggers are not mistaken for user moves.
func (e *Engine) noteExpected(id platform.WindowID, rect geom.Rect) {
	e.expected[id] = expectedFrame{rect: rect, deadline: time.Now().Add(echoWindow)}
}

// appName resolves a window's application, empty when unavailable.
func (e *Engine) appName(id platform.WindowID) string {
	app, err := e.windows.AppName(id)
	if err != nil {
		return ""
	}
	return app
}

// screenForFrame locates the screen owning a frame.
func (e *Engine) screenForFrame(frame geom.Rect) (platform.Screen, bool) {
	return platform.ScreenFor(e.current, frame)
}

func (e *Engine) debounceDuration() time.Duration {
	return time.Duration(e.cfg.DebounceMS) * time.Millisecond
}

func (e *Engine) settleDelay() time.Duration {
	return time.Duration(e.cfg.DisplaySettleMS) * time.Millisecond
}

// rememberZone persists a zone placement for later replay.
func (e *Engine) rememberZone(app string, screenID int, zoneKey string, tile int) {
	if e.store == nil || !e.cfg.PositionMemory.Enabled || app == "" || e.cfg.IsExcluded(app) {
		return
	}
	err := e.store.Record(context.Background(), memory.Entry{
		App:       app,
		ScreenID:  screenID,
		ZoneKey:   zoneKey,
		TileIndex: tile,
	})
	if err != nil {
		e.log.Warn("record zone memory failed", "app", app, "error", err)
	}
}

// rememberFrame persists a free-floating placement.
func (e *Engine) rememberFrame(app string, screenID int, frame geom.Rect) {
	if e.store == nil || !e.cfg.PositionMemory.Enabled || app == "" || e.cfg.IsExcluded(app) {
		return
	}
	f := frame
	err := e.store.Record(context.Background(), memory.Entry{
		App:      app,
		ScreenID: screenID,
		Frame:    &f,
	})
	if err != nil {
		e.log.Warn("record frame memory failed", "app", app, "error", err)
	}
}

// recordAction forwards a registry transition to the action log.
func (e *Engine) recordAction(p zone.Placement, id platform.WindowID, app string) {
	var action eventlog.Action
	switch p.Kind {
	case zone.TransitionAssign:
		action = eventlog.ActionAssign
	case zone.TransitionMove:
		action = eventlog.ActionMove
	case zone.TransitionCycle:
		action = eventlog.ActionCycle
	default:
		return
	}
	details := map[string]any{"app": app, "tile": p.TileIndex}
	if p.FromZone != "" {
		details["from"] = p.FromZone
	}
	e.actions.Record(action, p.Zone.ID, uint32(id), details)
}
