package memory

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/gridzones/internal/geom"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Record(ctx, Entry{App: "firefox", ScreenID: 1, ZoneKey: "left", TileIndex: 2})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	got, ok, err := s.Lookup(ctx, "firefox", 1)
	if err != nil || !ok {
		t.Fatalf("lookup: %v, %v", ok, err)
	}
	if got.ZoneKey != "left" || got.TileIndex != 2 || got.Frame != nil {
		t.Fatalf("entry = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("updated_at not stamped")
	}

	if _, ok, err := s.Lookup(ctx, "firefox", 2); err != nil || ok {
		t.Fatalf("lookup on other screen: %v, %v", ok, err)
	}
	if _, ok, err := s.Lookup(ctx, "emacs", 1); err != nil || ok {
		t.Fatalf("lookup of unknown app: %v, %v", ok, err)
	}
}

func TestRecordLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Record(ctx, Entry{App: "firefox", ScreenID: 1, ZoneKey: "left", TileIndex: 1})
	frame := geom.Rect{X: 100, Y: 50, Width: 800, Height: 600}
	if err := s.Record(ctx, Entry{App: "firefox", ScreenID: 1, Frame: &frame}); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, ok, _ := s.Lookup(ctx, "firefox", 1)
	if !ok {
		t.Fatalf("lookup miss")
	}
	// The frame entry fully replaces the zone entry.
	if got.ZoneKey != "" || got.TileIndex != 0 {
		t.Fatalf("zone fields survived overwrite: %+v", got)
	}
	if got.Frame == nil || *got.Frame != frame {
		t.Fatalf("frame = %+v", got.Frame)
	}

	entries, err := s.Entries(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries = %v, %v", entries, err)
	}
}

func TestRecordRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Record(ctx, Entry{App: "", ZoneKey: "left"}); err == nil {
		t.Fatalf("empty app accepted")
	}
	if err := s.Record(ctx, Entry{App: "firefox", ScreenID: 1}); err == nil {
		t.Fatalf("entry with neither zone nor frame accepted")
	}
}

func TestLookupAnyNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	old := time.Now().UTC().Add(-time.Hour)
	s.Record(ctx, Entry{App: "firefox", ScreenID: 1, ZoneKey: "left", UpdatedAt: old})
	s.Record(ctx, Entry{App: "firefox", ScreenID: 2, ZoneKey: "right"})
	s.Record(ctx, Entry{App: "emacs", ScreenID: 1, ZoneKey: "full"})

	got, err := s.LookupAny(ctx, "firefox")
	if err != nil {
		t.Fatalf("lookup any: %v", err)
	}
	if len(got) != 2 || got[0].ScreenID != 2 || got[1].ScreenID != 1 {
		t.Fatalf("entries = %+v", got)
	}
}

func TestForget(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Record(ctx, Entry{App: "firefox", ScreenID: 1, ZoneKey: "left"})
	s.Record(ctx, Entry{App: "firefox", ScreenID: 2, ZoneKey: "right"})
	s.Record(ctx, Entry{App: "emacs", ScreenID: 1, ZoneKey: "full"})

	n, err := s.Forget(ctx, "firefox")
	if err != nil || n != 2 {
		t.Fatalf("forget = %d, %v", n, err)
	}
	if n, _ := s.Forget(ctx, "firefox"); n != 0 {
		t.Fatalf("second forget removed %d", n)
	}
	entries, _ := s.Entries(ctx)
	if len(entries) != 1 || entries[0].App != "emacs" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	stale := time.Now().UTC().Add(-40 * 24 * time.Hour)
	s.Record(ctx, Entry{App: "old", ScreenID: 1, ZoneKey: "left", UpdatedAt: stale})
	s.Record(ctx, Entry{App: "new", ScreenID: 1, ZoneKey: "right"})

	n, err := s.Prune(ctx, 30*24*time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("prune = %d, %v", n, err)
	}
	if _, ok, _ := s.Lookup(ctx, "old", 1); ok {
		t.Fatalf("stale entry survived")
	}
	if _, ok, _ := s.Lookup(ctx, "new", 1); !ok {
		t.Fatalf("fresh entry pruned")
	}
	if n, _ := s.Prune(ctx, 0); n != 0 {
		t.Fatalf("zero max age pruned %d", n)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	frame := geom.Rect{X: 10, Y: 20, Width: 640, Height: 480}
	s.Record(ctx, Entry{App: "firefox", ScreenID: 1, ZoneKey: "left", TileIndex: 1})
	s.Record(ctx, Entry{App: "mpv", ScreenID: 2, Frame: &frame})

	var buf bytes.Buffer
	if err := s.Export(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newTestStore(t)
	n, err := dst.Import(ctx, &buf)
	if err != nil || n != 2 {
		t.Fatalf("import = %d, %v", n, err)
	}
	got, ok, _ := dst.Lookup(ctx, "mpv", 2)
	if !ok || got.Frame == nil || *got.Frame != frame {
		t.Fatalf("imported entry = %+v", got)
	}
}

func TestImportSkipsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	blob := `[
		{"app": "firefox", "screen_id": 1, "zone_key": "left"},
		{"app": "", "zone_key": "left"},
		{"app": "bare", "screen_id": 1}
	]`
	n, err := s.Import(ctx, bytes.NewBufferString(blob))
	if err != nil || n != 1 {
		t.Fatalf("import = %d, %v", n, err)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Record(ctx, Entry{App: "firefox", ScreenID: 1, ZoneKey: "left"})
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if _, ok, _ := s2.Lookup(ctx, "firefox", 1); !ok {
		t.Fatalf("entry lost across reopen")
	}
}

func TestTranslateFrame(t *testing.T) {
	from := geom.Rect{X: 0, Y: 0, Width: 2560, Height: 1440}
	to := geom.Rect{X: 2560, Y: 0, Width: 1920, Height: 1080}

	// Origin delta is +2560 on x.
	got := TranslateFrame(geom.Rect{X: 100, Y: 100, Width: 800, Height: 600}, from, to)
	want := geom.Rect{X: 2660, Y: 100, Width: 800, Height: 600}
	if got != want {
		t.Fatalf("translate = %+v, want %+v", got, want)
	}

	// A frame that lands past the smaller target edge is pulled back in.
	got = TranslateFrame(geom.Rect{X: 2000, Y: 1000, Width: 800, Height: 600}, from, to)
	if got.Right() > to.Right() || got.Bottom() > to.Bottom() {
		t.Fatalf("translated frame escapes target: %+v", got)
	}
	if got.Width != 800 || got.Height != 600 {
		t.Fatalf("size changed: %+v", got)
	}
}
