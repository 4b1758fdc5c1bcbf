package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/gridzones/internal/grid"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	cfg := res.Config
	if !cfg.Margins.Enabled || cfg.Margins.Size != 8 || !cfg.Margins.ScreenEdge {
		t.Fatalf("default margins = %+v", cfg.Margins)
	}
	if cfg.DefaultZone != "center" || cfg.DebounceMS != 500 {
		t.Fatalf("defaults wrong: zone=%q debounce=%d", cfg.DefaultZone, cfg.DebounceMS)
	}
	if len(cfg.Zones) == 0 {
		t.Fatalf("builtin zones missing")
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestBuiltinZoneTokensParse(t *testing.T) {
	cfg := DefaultConfig()
	warnings := cfg.parseRegions()
	if len(warnings) != 0 {
		t.Fatalf("builtin zones produced warnings: %v", warnings)
	}
	for _, z := range cfg.Zones {
		if len(z.Regions) != len(z.Tiles) {
			t.Fatalf("zone %s: %d tokens, %d parsed", z.Key, len(z.Tiles), len(z.Regions))
		}
	}
}

func TestLoadFullConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
log_level: debug
margins:
  enabled: true
  size: 12
  screen_edge: false
default_zone: left
auto_tile: false
debounce_ms: 300
problem_apps: [Gimp, krita]
excluded_apps: [gridzones]
custom_screens:
  DP-1: 4x3
screen_patterns:
  - pattern: "^eDP-"
    layout: 2x2
size_layouts:
  landscape:
    - min_inches: 27
      layout: 4x3
    - min_inches: 20
      max_inches: 26.9
      layout: 3x2
  portrait:
    - min_inches: 24
      layout: 1x3
zones:
  - key: editor
    hotkey: mod4-e
    tiles: ["a1:b3", "left-half"]
  - key: left
    tiles: ["50%"]
position_memory:
  enabled: true
  max_age_days: 30
`)
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	cfg := res.Config
	if cfg.LogLevel != "debug" || cfg.Margins.Size != 12 || cfg.Margins.ScreenEdge {
		t.Fatalf("scalars wrong: %+v", cfg)
	}
	if cfg.AutoTile {
		t.Fatalf("auto_tile should be off")
	}
	if !cfg.IsProblemApp("gimp") || !cfg.IsProblemApp("KRITA") {
		t.Fatalf("problem app matching is not case-insensitive")
	}
	if !cfg.IsExcluded("gridzones") || cfg.IsExcluded("firefox") {
		t.Fatalf("exclusion matching wrong")
	}

	// The builtin "left" zone is replaced, "editor" appended.
	left, ok := cfg.ZoneByKey("left")
	if !ok || len(left.Tiles) != 1 || left.Tiles[0] != "50%" {
		t.Fatalf("left zone not overridden: %+v", left)
	}
	editor, ok := cfg.ZoneByKey("editor")
	if !ok || editor.Hotkey != "mod4-e" || len(editor.Regions) != 2 {
		t.Fatalf("editor zone wrong: %+v", editor)
	}

	sel := cfg.Selector()
	if sel.Custom["DP-1"] != (grid.Layout{Cols: 4, Rows: 3}) {
		t.Fatalf("custom screen not compiled: %+v", sel.Custom)
	}
	if len(sel.Patterns) != 1 || len(sel.Sizes.Landscape) != 2 || len(sel.Sizes.Portrait) != 1 {
		t.Fatalf("selector rules not compiled: %+v", sel)
	}
	// Omitted max_inches is unbounded.
	if sel.Sizes.Landscape[0].MaxInches < 1e9 {
		t.Fatalf("open-ended max_inches = %v", sel.Sizes.Landscape[0].MaxInches)
	}
}

func TestLoadBadTileTokenWarnsAndSkips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
zones:
  - key: broken
    tiles: ["a1", "9000%", "b2"]
`)
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "9000%") {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	z, ok := res.Config.ZoneByKey("broken")
	if !ok || len(z.Regions) != 2 {
		t.Fatalf("bad token should be skipped, kept %d regions", len(z.Regions))
	}
}

func TestLoadUnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "no_such_option: true\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected strict decode error")
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		pathSub string
	}{
		{"bad log level", "log_level: loud\n", "log_level"},
		{"margin too big", "margins:\n  size: 9999\n", "margins.size"},
		{"bad layout", "custom_screens:\n  DP-1: wide\n", "custom_screens.DP-1"},
		{"bad regex", "screen_patterns:\n  - pattern: \"[\"\n    layout: 2x2\n", "screen_patterns[0].pattern"},
		{"missing zone key", "zones:\n  - tiles: [full]\n", "zones[0].key"},
		{"bad zone key", "zones:\n  - key: \"no spaces\"\n    tiles: [full]\n", ".key"},
		{"inverted size range", "size_layouts:\n  landscape:\n    - min_inches: 30\n      max_inches: 20\n      layout: 2x2\n", "max_inches"},
	}
	for _, tt := range tests {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		writeFile(t, path, tt.yaml)
		_, err := LoadFromPath(path)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: error %v is not a ValidationError", tt.name, err)
			continue
		}
		if !strings.Contains(ve.Path, tt.pathSub) {
			t.Errorf("%s: path %q does not mention %q", tt.name, ve.Path, tt.pathSub)
		}
	}
}

func TestIncludeMerge(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	main := filepath.Join(dir, "config.yaml")
	writeFile(t, base, "debounce_ms: 250\ndefault_zone: left\n")
	writeFile(t, main, "include: base.yaml\ndefault_zone: right\nzones:\n  - key: right\n    tiles: [right-half]\n")

	res, err := LoadFromPath(main)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	// The including file wins; untouched include values survive.
	if res.Config.DefaultZone != "right" {
		t.Fatalf("default_zone = %q, want right", res.Config.DefaultZone)
	}
	if res.Config.DebounceMS != 250 {
		t.Fatalf("debounce_ms = %d, want 250 from include", res.Config.DebounceMS)
	}
	if len(res.Files) != 2 {
		t.Fatalf("files = %v", res.Files)
	}
}

func TestIncludeCycleDetected(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")
	if _, err := LoadFromPath(a); err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestIncludeDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "conf.d")
	writeFile(t, filepath.Join(sub, "10-margins.yaml"), "margins:\n  size: 4\n")
	writeFile(t, filepath.Join(sub, "20-margins.yaml"), "margins:\n  size: 6\n")
	writeFile(t, filepath.Join(sub, "ignore.txt"), "not yaml")
	main := filepath.Join(dir, "config.yaml")
	writeFile(t, main, "include: conf.d\n")

	res, err := LoadFromPath(main)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	// Name order: 20- overrides 10-.
	if res.Config.Margins.Size != 6 {
		t.Fatalf("margins.size = %d, want 6", res.Config.Margins.Size)
	}
}

func TestResolveXSession(t *testing.T) {
	t.Setenv("DISPLAY", ":7")
	t.Setenv("XAUTHORITY", "")
	cfg := DefaultConfig()
	s := cfg.ResolveXSession()
	if s.Display != ":7" || s.DisplaySource != "environment" {
		t.Fatalf("session = %+v", s)
	}

	cfg.Display = ":1"
	s = cfg.ResolveXSession()
	if s.Display != ":1" || s.DisplaySource != "config" {
		t.Fatalf("config override lost: %+v", s)
	}

	t.Setenv("DISPLAY", "")
	cfg.Display = ""
	s = cfg.ResolveXSession()
	if s.Display != ":0" || s.DisplaySource != "default" {
		t.Fatalf("default display: %+v", s)
	}
}
