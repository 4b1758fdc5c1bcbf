package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/gridzones/internal/eventlog"
	"github.com/1broseidon/gridzones/internal/geom"
	"github.com/1broseidon/gridzones/internal/memory"
	"github.com/1broseidon/gridzones/internal/platform"
	"github.com/1broseidon/gridzones/internal/zone"
)

// OnWindowCreated handles a newly mapped window: replay its remembered
// placement if there is one, otherwise let the matcher auto-place it when
// auto-tiling is on.
func (e *Engine) OnWindowCreated(id platform.WindowID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.windows.IsValid(id) {
		return
	}
	app := e.appName(id)
	if app == "" || e.cfg.IsExcluded(app) {
		return
	}
	frame, err := e.windows.Frame(id)
	if err != nil {
		return
	}
	screen, ok := e.screenForFrame(frame)
	if !ok {
		return
	}

	if e.replayMemory(id, app, screen) {
		return
	}
	if !e.cfg.AutoTile {
		return
	}

	zones := e.registry.ZonesOnScreen(screen.ID)
	if m, ok := zone.BestMatch(frame, zones, screen.Frame); ok && m.Score >= zone.MatchThreshold {
		if p, err := e.registry.Place(id, m.Zone, m.TileIndex); err == nil {
			e.log.Info("window auto-placed",
				"window", id, "app", app, "zone", m.Zone.ID,
				"tile", m.TileIndex, "score", fmt.Sprintf("%.2f", m.Score))
			e.applyFrame(id, app, p.Rect)
			e.recordAction(p, id, app)
			e.rememberZone(app, screen.ID, m.Zone.Key, m.TileIndex)
			return
		}
	}
	if e.cfg.AutoTileFallback && e.cfg.DefaultZone != "" {
		if err := e.activateWindow(id, e.cfg.DefaultZone); err != nil {
			e.log.Debug("default zone fallback failed", "window", id, "error", err)
		}
	}
}

// replayMemory applies a stored placement: a zone entry resolves against the
// window's current screen, a frame entry is translated if it was remembered
// elsewhere. Reports whether anything was replayed.
func (e *Engine) replayMemory(id platform.WindowID, app string, screen platform.Screen) bool {
	if e.store == nil || !e.cfg.PositionMemory.Enabled {
		return false
	}
	ctx := context.Background()

	entry, ok, err := e.store.Lookup(ctx, app, screen.ID)
	if err != nil {
		e.log.Warn("memory lookup failed", "app", app, "error", err)
		return false
	}
	if !ok {
		entries, err := e.store.LookupAny(ctx, app)
		if err != nil || len(entries) == 0 {
			return false
		}
		entry = entries[0]
	}

	if entry.ZoneKey != "" {
		z, ok := e.registry.Resolve(entry.ZoneKey, screen.ID)
		if !ok {
			return false
		}
		p, err := e.registry.Place(id, z, entry.TileIndex)
		if err != nil {
			return false
		}
		e.log.Info("placement replayed",
			"window", id, "app", app, "zone", z.ID, "tile", p.TileIndex)
		e.applyFrame(id, app, p.Rect)
		e.actions.Record(eventlog.ActionReplay, z.ID, uint32(id),
			map[string]any{"app": app, "tile": p.TileIndex})
		return true
	}

	if entry.Frame != nil {
		rect := *entry.Frame
		if entry.ScreenID != screen.ID {
			if old, ok := platform.ScreenByID(e.current, entry.ScreenID); ok {
				rect = memory.TranslateFrame(rect, old.Frame, screen.Frame)
			} else {
				rect = rect.ClampInto(screen.Frame)
			}
		}
		e.log.Info("frame replayed", "window", id, "app", app)
		e.applyFrame(id, app, rect)
		e.actions.Record(eventlog.ActionReplay, "", uint32(id), map[string]any{"app": app})
		return true
	}
	return false
}

// OnWindowDestroyed drops all engine state for a window.
func (e *Engine) OnWindowDestroyed(id platform.WindowID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if h, ok := e.debounce[id]; ok {
		h.Cancel()
		delete(e.debounce, id)
	}
	if h, ok := e.verify[id]; ok {
		h.Cancel()
		delete(e.verify, id)
	}
	delete(e.expected, id)

	a, assigned := e.registry.Assignment(id)
	if e.registry.Remove(id) {
		e.log.Debug("window destroyed", "window", id, "zone", a.ZoneID)
		if assigned {
			e.actions.Record(eventlog.ActionRemove, a.ZoneID, uint32(id),
				map[string]any{"reason": "destroyed"})
		}
	}
}

// OnWindowConfigured filters engine-caused echoes and debounces the rest
// into a user-move capture.
func (e *Engine) OnWindowConfigured(id platform.WindowID, frame geom.Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if exp, ok := e.expected[id]; ok {
		if time.Now().Before(exp.deadline) {
			if frame.ApproxEqual(exp.rect, echoTolerancePX) {
				return
			}
		} else {
			delete(e.expected, id)
		}
	}

	if h, ok := e.debounce[id]; ok {
		h.Cancel()
	}
	e.debounce[id] = e.sched.After(e.debounceDuration(), func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.debounce, id)
		e.captureMove(id)
	})
}

// captureMove runs after the debounce: a window still parked on its tile is
// left alone, one dragged away is released from its zone, and the final
// frame is remembered. Callers hold the lock.
func (e *Engine) captureMove(id platform.WindowID) {
	if !e.windows.IsValid(id) {
		return
	}
	frame, err := e.windows.Frame(id)
	if err != nil {
		return
	}
	screen, ok := e.screenForFrame(frame)
	if !ok {
		return
	}
	app := e.appName(id)

	if a, ok := e.registry.Assignment(id); ok {
		if z, ok := e.registry.Zone(a.ZoneID); ok {
			if rect, ok := z.TileRect(a.TileIndex); ok &&
				frame.ApproxEqual(rect, e.cfg.SettleTolerancePX) {
				return
			}
		}
		e.registry.Remove(id)
		e.log.Info("user move released window", "window", id, "zone", a.ZoneID, "app", app)
		e.actions.Record(eventlog.ActionRemove, a.ZoneID, uint32(id),
			map[string]any{"app": app, "reason": "user-move"})
	}
	e.rememberFrame(app, screen.ID, frame)
}

// OnDisplayChange reacts to a monitor being added, removed, or reconfigured.
// The work runs as four scheduled phases with settle delays between them;
// another change arriving mid-sequence abandons the old sequence.
func (e *Engine) OnDisplayChange() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startDisplayChange()
}

func (e *Engine) startDisplayChange() {
	e.displayGen++
	gen := e.displayGen
	e.log.Info("display change", "generation", gen)
	e.sched.After(e.settleDelay(), func() { e.runPhase(gen, 1) })
}

// runPhase executes one display change phase: snapshot, rebuild, remap,
// verify.
func (e *Engine) runPhase(gen uint64, phase int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.displayGen {
		e.log.Debug("display change superseded", "generation", gen, "phase", phase)
		return
	}

	switch phase {
	case 1:
		e.preChange = e.snapshotAssignments()
		e.layouts.Purge()
		e.tiles.Purge()
	case 2:
		e.rebuild()
	case 3:
		e.remapWindows()
	case 4:
		e.retile()
		e.preChange = nil
		e.log.Info("display change complete", "generation", gen)
		return
	}
	e.sched.After(e.settleDelay(), func() { e.runPhase(gen, phase+1) })
}

// snapshotAssignments captures every managed window's placement before the
// zone set is torn down. Callers hold the lock.
func (e *Engine) snapshotAssignments() []remapEntry {
	var out []remapEntry
	for _, wa := range e.registry.AssignedWindows() {
		z, ok := e.registry.Zone(wa.Assignment.ZoneID)
		if !ok {
			continue
		}
		entry := remapEntry{
			id:      wa.Window,
			app:     e.appName(wa.Window),
			zoneKey: z.Key,
			tile:    wa.Assignment.TileIndex,
		}
		if rect, ok := z.TileRect(wa.Assignment.TileIndex); ok {
			entry.frame = rect
		}
		if s, ok := platform.ScreenByID(e.current, z.ScreenID); ok {
			entry.screenFrame = s.Frame
		}
		out = append(out, entry)
	}
	return out
}

// remapWindows finds new homes for windows whose zones vanished in the
// rebuild: same zone key on the window's new screen first, then the best
// scoring zone above the remap threshold, and as a last resort the window
// keeps its translated frame unmanaged. Callers hold the lock.
func (e *Engine) remapWindows() {
	for _, pc := range e.preChange {
		if !e.windows.IsValid(pc.id) {
			e.registry.Remove(pc.id)
			continue
		}
		if _, ok := e.registry.Assignment(pc.id); ok {
			continue // zone survived the rebuild
		}
		frame, err := e.windows.Frame(pc.id)
		if err != nil {
			continue
		}
		screen, ok := e.screenForFrame(frame)
		if !ok {
			continue
		}

		if z, ok := e.registry.Resolve(pc.zoneKey, screen.ID); ok {
			if p, err := e.registry.Place(pc.id, z, pc.tile); err == nil {
				e.log.Info("window remapped", "window", pc.id, "zone", z.ID, "tile", p.TileIndex)
				e.applyFrame(pc.id, pc.app, p.Rect)
				e.actions.Record(eventlog.ActionRemap, z.ID, uint32(pc.id),
					map[string]any{"app": pc.app, "tile": p.TileIndex})
				continue
			}
		}

		moved := pc.frame
		if !pc.screenFrame.Empty() {
			moved = memory.TranslateFrame(pc.frame, pc.screenFrame, screen.Frame)
		} else {
			moved = moved.ClampInto(screen.Frame)
		}
		if m, ok := zone.BestMatch(moved, e.registry.ZonesOnScreen(screen.ID), screen.Frame); ok &&
			m.Score >= zone.RemapThreshold {
			if p, err := e.registry.Place(pc.id, m.Zone, m.TileIndex); err == nil {
				e.log.Info("window remapped by match",
					"window", pc.id, "zone", m.Zone.ID, "score", fmt.Sprintf("%.2f", m.Score))
				e.applyFrame(pc.id, pc.app, p.Rect)
				e.actions.Record(eventlog.ActionRemap, m.Zone.ID, uint32(pc.id),
					map[string]any{"app": pc.app, "score": fmt.Sprintf("%.2f", m.Score)})
				continue
			}
		}
		// No zone claims it; at least keep it visible.
		e.applyFrame(pc.id, pc.app, moved)
	}
}

// Reconcile is the periodic safety net: drop assignments for vanished
// windows, repair zone-local indexes, and catch screen changes whose events
// were missed.
func (e *Engine) Reconcile() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, wa := range e.registry.AssignedWindows() {
		if !e.windows.IsValid(wa.Window) {
			e.registry.Remove(wa.Window)
			e.log.Debug("reconciler dropped vanished window", "window", wa.Window)
			e.actions.Record(eventlog.ActionRepair, wa.Assignment.ZoneID, uint32(wa.Window),
				map[string]any{"reason": "vanished"})
		}
	}

	for _, rep := range e.registry.Reconcile() {
		e.log.Warn("registry repaired", "window", rep.Window, "zone", rep.ZoneID, "action", rep.Action)
		e.actions.Record(eventlog.ActionRepair, rep.ZoneID, uint32(rep.Window),
			map[string]any{"action": rep.Action})
	}

	screens, err := e.screens.Screens()
	if err != nil {
		e.log.Warn("reconciler screen query failed", "error", err)
		return
	}
	if screenSignature(screens) != screenSignature(e.current) {
		e.log.Info("screen change detected by reconciler")
		e.startDisplayChange()
	}
}

func screenSignature(screens []platform.Screen) string {
	var sb strings.Builder
	for _, s := range screens {
		fmt.Fprintf(&sb, "%d:%s:%d,%d,%d,%d;", s.ID, s.Name,
			s.Full.X, s.Full.Y, s.Full.Width, s.Full.Height)
	}
	return sb.String()
}
