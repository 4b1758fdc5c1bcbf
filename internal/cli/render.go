package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/1broseidon/gridzones/internal/engine"
	"github.com/1broseidon/gridzones/internal/geom"
	"github.com/1broseidon/gridzones/internal/ipc"
	"github.com/1broseidon/gridzones/internal/memory"
	"github.com/1broseidon/gridzones/internal/snapshot"
)

// RenderStatus writes the full daemon status: process state, screens with
// their chosen layouts, and every managed window.
func RenderStatus(w io.Writer, s *ipc.StatusData) {
	title(w, "gridzones daemon")

	running := styleWarn.Render("no")
	if s.DaemonRunning {
		running = styleOK.Render("yes")
	}
	fmt.Fprintln(w, "  "+styleKeyCell.Render("running")+" "+running)
	keyValue(w, "uptime", (time.Duration(s.UptimeSeconds) * time.Second).String())
	keyValue(w, "screens", fmt.Sprintf("%d", len(s.Engine.Screens)))
	keyValue(w, "windows", fmt.Sprintf("%d managed", len(s.Engine.Windows)))
	keyValue(w, "layouts", fmt.Sprintf("%d cached (%d hits, %d misses)",
		s.Engine.LayoutCache.Size, s.Engine.LayoutCache.Hits, s.Engine.LayoutCache.Misses))
	keyValue(w, "tiles", fmt.Sprintf("%d cached (%d hits, %d misses)",
		s.Engine.TileCache.Size, s.Engine.TileCache.Hits, s.Engine.TileCache.Misses))

	if len(s.Engine.Screens) > 0 {
		fmt.Fprintln(w)
		title(w, "screens")
		for _, sc := range s.Engine.Screens {
			fmt.Fprintf(w, "  [%d] %s %s %s\n",
				sc.ID,
				styleValue.Render(sc.Name),
				formatRect(sc.Full),
				styleDim.Render(iconDot+" layout "+sc.Layout+" ("+sc.Rule+")"))
		}
	}

	fmt.Fprintln(w)
	title(w, "windows")
	if len(s.Engine.Windows) == 0 {
		detail(w, "no managed windows")
		return
	}
	for _, win := range s.Engine.Windows {
		fmt.Fprintf(w, "  %s %s → %s %s\n",
			styleDim.Render(formatWindow(win.ID)),
			styleValue.Render(win.App),
			styleZone.Render(fmt.Sprintf("%s[%d]", win.ZoneKey, win.Tile)),
			styleDim.Render(formatRect(win.Frame)))
	}
}

// RenderZones writes every zone with its tiles, hotkeys, and occupants.
func RenderZones(w io.Writer, zones []engine.ZoneInfo) {
	title(w, "zones")
	if len(zones) == 0 {
		detail(w, "no zones defined")
		return
	}
	for _, z := range zones {
		line := "  " + styleZone.Render(z.Key) + styleDim.Render(fmt.Sprintf(" (screen %d)", z.ScreenID))
		if z.Hotkey != "" {
			line += styleDim.Render(" "+iconDot+" hotkey ") + styleValue.Render(z.Hotkey)
		}
		if z.FocusHotkey != "" {
			line += styleDim.Render(" "+iconDot+" focus ") + styleValue.Render(z.FocusHotkey)
		}
		fmt.Fprintln(w, line)

		for _, t := range z.Tiles {
			tileLine := fmt.Sprintf("    [%d] %s", t.Index, formatRect(t.Rect))
			if t.Label != "" {
				tileLine += " " + styleDim.Render(t.Label)
			}
			fmt.Fprintln(w, tileLine)
		}
		if len(z.Windows) > 0 {
			ids := ""
			for i, id := range z.Windows {
				if i > 0 {
					ids += " "
				}
				ids += formatWindow(id)
			}
			fmt.Fprintln(w, "    "+styleDim.Render("windows: "+ids))
		}
	}
}

// RenderScreens writes the connected screens with usable and full geometry.
func RenderScreens(w io.Writer, screens []engine.ScreenInfo) {
	title(w, "screens")
	if len(screens) == 0 {
		detail(w, "no screens detected")
		return
	}
	for _, sc := range screens {
		fmt.Fprintf(w, "  [%d] %s\n", sc.ID, styleValue.Render(sc.Name))
		fmt.Fprintln(w, "      "+styleKey.Render("frame ")+" "+formatRect(sc.Frame))
		fmt.Fprintln(w, "      "+styleKey.Render("full  ")+" "+formatRect(sc.Full))
		fmt.Fprintln(w, "      "+styleKey.Render("layout")+" "+sc.Layout+" "+styleDim.Render("("+sc.Rule+")"))
	}
}

// RenderMemory writes the remembered per-app positions.
func RenderMemory(w io.Writer, entries []memory.Entry) {
	title(w, fmt.Sprintf("position memory (%d entries)", len(entries)))
	if len(entries) == 0 {
		detail(w, "nothing remembered yet")
		return
	}
	for _, e := range entries {
		var target string
		if e.ZoneKey != "" {
			target = styleZone.Render(fmt.Sprintf("%s[%d]", e.ZoneKey, e.TileIndex))
		} else if e.Frame != nil {
			target = styleDim.Render("frame " + formatRect(*e.Frame))
		} else {
			target = styleDim.Render("(empty)")
		}
		fmt.Fprintf(w, "  %s %s %s %s\n",
			styleValue.Render(fmt.Sprintf("%-16s", e.App)),
			styleDim.Render(fmt.Sprintf("screen %d %s", e.ScreenID, iconDot)),
			target,
			styleDim.Render(iconDot+" "+ago(e.UpdatedAt)))
	}
}

// RenderSnapshots writes the saved snapshot inventory.
func RenderSnapshots(w io.Writer, infos []snapshot.Info) {
	title(w, fmt.Sprintf("snapshots (%d)", len(infos)))
	if len(infos) == 0 {
		detail(w, "no snapshots saved")
		return
	}
	for _, info := range infos {
		fmt.Fprintf(w, "  %s %s\n",
			styleValue.Render(fmt.Sprintf("%-16s", info.Name)),
			styleDim.Render(fmt.Sprintf("%d placements %s saved %s",
				info.Placements, iconDot, info.SavedAt.Local().Format("2006-01-02 15:04"))))
	}
}

// formatRect renders X geometry notation: WIDTHxHEIGHT+X+Y.
func formatRect(r geom.Rect) string {
	return fmt.Sprintf("%dx%d%+d%+d", r.Width, r.Height, r.X, r.Y)
}

func formatWindow(id uint32) string {
	return fmt.Sprintf("0x%08x", id)
}

// ago renders a coarse relative timestamp for list output.
func ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
