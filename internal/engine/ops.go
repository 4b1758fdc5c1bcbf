package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/gridzones/internal/eventlog"
	"github.com/1broseidon/gridzones/internal/memory"
	"github.com/1broseidon/gridzones/internal/platform"
	"github.com/1broseidon/gridzones/internal/zone"
)

// Activate sends the focused window to a zone: first activation takes the
// zone's first tile, re-activation cycles tiles, activation from another
// zone moves.
func (e *Engine) Activate(zoneKey string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, ok := e.windows.Focused()
	if !ok {
		return ErrNoFocusedWindow
	}
	return e.activateWindow(id, zoneKey)
}

// ActivateWindow sends a specific window to a zone.
func (e *Engine) ActivateWindow(id platform.WindowID, zoneKey string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activateWindow(id, zoneKey)
}

func (e *Engine) activateWindow(id platform.WindowID, zoneKey string) error {
	if !e.windows.IsValid(id) {
		return platform.ErrWindowGone
	}
	frame, err := e.windows.Frame(id)
	if err != nil {
		return platform.ErrWindowGone
	}
	screen, ok := e.screenForFrame(frame)
	if !ok {
		return errors.New("no screens connected")
	}

	z, ok := e.registry.Resolve(zoneKey, screen.ID)
	if !ok {
		return fmt.Errorf("%w: %q on screen %d", ErrUnknownZone, zoneKey, screen.ID)
	}

	p, err := e.registry.Activate(id, z)
	if errors.Is(err, zone.ErrNoTiles) {
		e.log.Warn("zone has no tiles", "zone", z.ID)
		return nil
	}
	if err != nil {
		return err
	}

	app := e.appName(id)
	e.log.Info("zone activated",
		"zone", z.ID, "window", id, "app", app,
		"tile", p.TileIndex, "transition", p.Kind.String())
	e.applyFrame(id, app, p.Rect)
	e.recordAction(p, id, app)
	e.rememberZone(app, screen.ID, z.Key, p.TileIndex)
	return nil
}

// FocusCycle focuses the next window assigned to a zone, in window ID order
// with wrap-around. A zone with no occupants is a no-op.
func (e *Engine) FocusCycle(zoneKey string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	screenID := 0
	cur, hasFocus := e.windows.Focused()
	if hasFocus {
		if frame, err := e.windows.Frame(cur); err == nil {
			if s, ok := e.screenForFrame(frame); ok {
				screenID = s.ID
			}
		}
	} else if len(e.current) > 0 {
		screenID = e.current[0].ID
	}

	z, ok := e.registry.Resolve(zoneKey, screenID)
	if !ok {
		return fmt.Errorf("%w: %q on screen %d", ErrUnknownZone, zoneKey, screenID)
	}

	occupants := z.Windows()
	if len(occupants) == 0 {
		e.log.Debug("focus cycle on empty zone", "zone", z.ID)
		return nil
	}

	next := occupants[0]
	if hasFocus {
		for i, w := range occupants {
			if w == cur {
				next = occupants[(i+1)%len(occupants)]
				break
			}
		}
	}
	if err := e.windows.Focus(next); err != nil {
		return fmt.Errorf("focus window %d: %w", next, err)
	}
	e.log.Info("focus cycled", "zone", z.ID, "window", next)
	return nil
}

// Unmanage releases the focused window from its zone. The window keeps its
// current frame.
func (e *Engine) Unmanage() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, ok := e.windows.Focused()
	if !ok {
		return ErrNoFocusedWindow
	}
	a, assigned := e.registry.Assignment(id)
	if !e.registry.Remove(id) {
		return nil
	}
	app := e.appName(id)
	e.log.Info("window unmanaged", "window", id, "zone", a.ZoneID, "app", app)
	if assigned {
		e.actions.Record(eventlog.ActionRemove, a.ZoneID, uint32(id), map[string]any{"app": app, "reason": "unmanage"})
	}
	return nil
}

// Retile re-applies every managed window's tile, dropping assignments whose
// window has vanished.
func (e *Engine) Retile() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.retile()
}

func (e *Engine) retile() {
	for _, wa := range e.registry.AssignedWindows() {
		id := wa.Window
		if !e.windows.IsValid(id) {
			e.registry.Remove(id)
			e.log.Debug("dropped vanished window", "window", id)
			continue
		}
		z, ok := e.registry.Zone(wa.Assignment.ZoneID)
		if !ok {
			continue
		}
		rect, ok := z.TileRect(wa.Assignment.TileIndex)
		if !ok {
			continue
		}
		e.applyFrame(id, e.appName(id), rect)
	}
}

// PlaceApp assigns every open window of an application to a zone, matched by
// class name case-insensitively. Used when restoring a snapshot. Returns how
// many windows were placed.
func (e *Engine) PlaceApp(app, zoneKey string, tile int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wins, err := e.windows.List()
	if err != nil {
		return 0, fmt.Errorf("list windows: %w", err)
	}
	placed := 0
	for _, w := range wins {
		if !strings.EqualFold(w.App, app) {
			continue
		}
		screen, ok := e.screenForFrame(w.Frame)
		if !ok {
			continue
		}
		z, ok := e.registry.Resolve(zoneKey, screen.ID)
		if !ok {
			continue
		}
		p, err := e.registry.Place(w.ID, z, tile)
		if err != nil {
			continue
		}
		e.applyFrame(w.ID, w.App, p.Rect)
		e.recordAction(p, w.ID, w.App)
		placed++
	}
	return placed, nil
}

// MemoryEntries lists every stored placement.
func (e *Engine) MemoryEntries(ctx context.Context) ([]memory.Entry, error) {
	if e.store == nil {
		return nil, nil
	}
	return e.store.Entries(ctx)
}

// ForgetMemory drops stored placements for an application.
func (e *Engine) ForgetMemory(ctx context.Context, app string) (int, error) {
	if e.store == nil {
		return 0, nil
	}
	return e.store.Forget(ctx, app)
}

// PruneMemory drops stored placements older than maxAge.
func (e *Engine) PruneMemory(ctx context.Context, maxAge time.Duration) (int, error) {
	if e.store == nil {
		return 0, nil
	}
	return e.store.Prune(ctx, maxAge)
}
