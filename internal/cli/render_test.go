package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/gridzones/internal/engine"
	"github.com/1broseidon/gridzones/internal/geom"
	"github.com/1broseidon/gridzones/internal/ipc"
	"github.com/1broseidon/gridzones/internal/memory"
	"github.com/1broseidon/gridzones/internal/snapshot"
)

func TestRenderStatus(t *testing.T) {
	status := &ipc.StatusData{
		DaemonRunning: true,
		UptimeSeconds: 125,
		Engine: engine.Status{
			Screens: []engine.ScreenInfo{
				{ID: 1, Name: "DP-1", Full: geom.Rect{Width: 1920, Height: 1080}, Layout: "3x2", Rule: "default"},
			},
			Windows: []engine.WindowInfo{
				{ID: 0x1a2b, App: "kitty", Zone: "left_1", ZoneKey: "left", Tile: 1, Frame: geom.Rect{X: 8, Y: 8, Width: 944, Height: 1064}},
			},
		},
	}

	var buf bytes.Buffer
	RenderStatus(&buf, status)
	out := buf.String()

	for _, want := range []string{"gridzones daemon", "2m5s", "DP-1", "3x2", "kitty", "left[1]", "944x1064+8+8", "0x00001a2b"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStatusNoWindows(t *testing.T) {
	var buf bytes.Buffer
	RenderStatus(&buf, &ipc.StatusData{DaemonRunning: true})
	if !strings.Contains(buf.String(), "no managed windows") {
		t.Errorf("expected empty-window note, got:\n%s", buf.String())
	}
}

func TestRenderZones(t *testing.T) {
	zones := []engine.ZoneInfo{
		{
			ID: "left_1", Key: "left", ScreenID: 1, Hotkey: "mod4-h",
			Tiles: []engine.TileInfo{
				{Index: 0, Rect: geom.Rect{Width: 960, Height: 1080}},
				{Index: 1, Rect: geom.Rect{Width: 1920, Height: 1080}, Label: "full"},
			},
			Windows: []uint32{1},
		},
	}

	var buf bytes.Buffer
	RenderZones(&buf, zones)
	out := buf.String()

	for _, want := range []string{"left", "(screen 1)", "mod4-h", "960x1080+0+0", "full", "0x00000001"} {
		if !strings.Contains(out, want) {
			t.Errorf("zones output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMemory(t *testing.T) {
	frame := geom.Rect{X: 100, Y: 50, Width: 800, Height: 600}
	entries := []memory.Entry{
		{App: "kitty", ScreenID: 1, ZoneKey: "left", TileIndex: 1, UpdatedAt: time.Now().Add(-2 * time.Hour)},
		{App: "gimp", ScreenID: 2, Frame: &frame, UpdatedAt: time.Now().Add(-50 * time.Hour)},
	}

	var buf bytes.Buffer
	RenderMemory(&buf, entries)
	out := buf.String()

	for _, want := range []string{"kitty", "left[1]", "2h ago", "gimp", "800x600+100+50", "2d ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("memory output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMemoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderMemory(&buf, nil)
	if !strings.Contains(buf.String(), "nothing remembered yet") {
		t.Errorf("expected empty note, got:\n%s", buf.String())
	}
}

func TestRenderSnapshots(t *testing.T) {
	infos := []snapshot.Info{
		{Name: "coding", SavedAt: time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC), Placements: 4},
	}

	var buf bytes.Buffer
	RenderSnapshots(&buf, infos)
	out := buf.String()

	if !strings.Contains(out, "coding") || !strings.Contains(out, "4 placements") {
		t.Errorf("snapshot output incomplete:\n%s", out)
	}
}

func TestFormatRect(t *testing.T) {
	cases := []struct {
		r    geom.Rect
		want string
	}{
		{geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, "1920x1080+0+0"},
		{geom.Rect{X: -1920, Y: 0, Width: 1920, Height: 1080}, "1920x1080-1920+0"},
		{geom.Rect{X: 8, Y: 1448, Width: 944, Height: 600}, "944x600+8+1448"},
	}
	for _, tc := range cases {
		if got := formatRect(tc.r); got != tc.want {
			t.Errorf("formatRect(%+v) = %q, want %q", tc.r, got, tc.want)
		}
	}
}
