package grid

import (
	"regexp"
	"testing"

	"github.com/1broseidon/gridzones/internal/geom"
)

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("4x3")
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	if l.Cols != 4 || l.Rows != 3 {
		t.Fatalf("ParseLayout = %+v, want 4x3", l)
	}
	for _, bad := range []string{"", "4", "x3", "4x0", "0x3", "axb", "4x3x2"} {
		if _, err := ParseLayout(bad); err == nil {
			t.Errorf("ParseLayout(%q): expected error", bad)
		}
	}
}

func TestSelectResolutionFallback(t *testing.T) {
	var s Selector
	tests := []struct {
		name string
		full geom.Rect
		want Layout
	}{
		// 4K and larger get the densest grid.
		{"4k", geom.Rect{Width: 3840, Height: 2160}, Layout{4, 3}},
		{"5k", geom.Rect{Width: 5120, Height: 2880}, Layout{4, 3}},
		// 3440x1440 is ultrawide by width even though aspect is 2.39.
		{"ultrawide", geom.Rect{Width: 3440, Height: 1440}, Layout{4, 2}},
		// 2560x1080 has aspect 2.37 > 2.0.
		{"ultrawide-small", geom.Rect{Width: 2560, Height: 1080}, Layout{4, 2}},
		{"1440p", geom.Rect{Width: 2560, Height: 1440}, Layout{3, 3}},
		{"1080p", geom.Rect{Width: 1920, Height: 1080}, Layout{3, 2}},
		{"small", geom.Rect{Width: 1280, Height: 800}, Layout{2, 2}},
		// Portrait 1440p: width 1440, height 2560.
		{"portrait-1440p", geom.Rect{Width: 1440, Height: 2560}, Layout{1, 3}},
		{"portrait-1080p", geom.Rect{Width: 1080, Height: 1920}, Layout{1, 2}},
	}
	for _, tt := range tests {
		got := s.Select(tt.name, tt.full)
		if got.Layout != tt.want {
			t.Errorf("%s: Select = %s (%s), want %s", tt.name, got.Layout, got.Rule, tt.want)
		}
	}
}

func TestSelectCustomOverrideWins(t *testing.T) {
	s := Selector{
		Custom: map[string]Layout{"DP-1": {5, 4}},
		Patterns: []PatternRule{
			{Pattern: regexp.MustCompile(`^DP-`), Layout: Layout{2, 1}},
		},
	}
	got := s.Select("DP-1", geom.Rect{Width: 3840, Height: 2160})
	if got.Layout != (Layout{5, 4}) {
		t.Fatalf("custom override lost: got %s via %s", got.Layout, got.Rule)
	}
	// A sibling output misses the override but hits the pattern.
	got = s.Select("DP-2", geom.Rect{Width: 3840, Height: 2160})
	if got.Layout != (Layout{2, 1}) {
		t.Fatalf("pattern rule lost: got %s via %s", got.Layout, got.Rule)
	}
}

func TestSelectPatternOrder(t *testing.T) {
	s := Selector{
		Patterns: []PatternRule{
			{Pattern: regexp.MustCompile(`eDP`), Layout: Layout{2, 2}},
			{Pattern: regexp.MustCompile(`DP`), Layout: Layout{3, 3}},
		},
	}
	// Both match; the first declared rule wins.
	got := s.Select("eDP-1", geom.Rect{Width: 1920, Height: 1080})
	if got.Layout != (Layout{2, 2}) {
		t.Fatalf("declaration order not honored: got %s", got.Layout)
	}
}

func TestSelectDiagonalSize(t *testing.T) {
	s := Selector{
		Sizes: SizeTable{
			Landscape: []SizeRule{
				{MinInches: 27, MaxInches: 100, Layout: Layout{4, 3}},
				{MinInches: 20, MaxInches: 26.9, Layout: Layout{3, 2}},
			},
			Portrait: []SizeRule{
				{MinInches: 24, MaxInches: 100, Layout: Layout{1, 3}},
			},
		},
	}
	tests := []struct {
		name string
		full geom.Rect
		want Layout
	}{
		{"DELL 27-inch", geom.Rect{Width: 1920, Height: 1080}, Layout{4, 3}},
		{`LG 24"`, geom.Rect{Width: 1920, Height: 1080}, Layout{3, 2}},
		{"HP 27 inch", geom.Rect{Width: 1920, Height: 1080}, Layout{4, 3}},
		// Bounds are inclusive on both ends.
		{"BenQ 26.9-inch", geom.Rect{Width: 1920, Height: 1080}, Layout{3, 2}},
		// Portrait orientation consults the portrait table.
		{"DELL 27-inch", geom.Rect{Width: 1080, Height: 1920}, Layout{1, 3}},
	}
	for _, tt := range tests {
		got := s.Select(tt.name, tt.full)
		if got.Layout != tt.want {
			t.Errorf("%q %dx%d: Select = %s (%s), want %s",
				tt.name, tt.full.Width, tt.full.Height, got.Layout, got.Rule, tt.want)
		}
	}

	// No size in the name falls through to resolution.
	got := s.Select("DP-3", geom.Rect{Width: 1920, Height: 1080})
	if got.Layout != (Layout{3, 2}) || got.Rule != "resolution:1080p" {
		t.Fatalf("fallthrough = %s via %s, want 3x2 via resolution:1080p", got.Layout, got.Rule)
	}

	// A size outside every declared range also falls through.
	got = s.Select(`tiny 10"`, geom.Rect{Width: 1920, Height: 1080})
	if got.Rule != "resolution:1080p" {
		t.Fatalf("out-of-range size should fall through, got rule %s", got.Rule)
	}
}

func TestDiagonalInchesForms(t *testing.T) {
	tests := []struct {
		name string
		want float64
		ok   bool
	}{
		{"27-inch", 27, true},
		{"27 inch", 27, true},
		{"27inches", 27, true},
		{`34"`, 34, true},
		{"31.5-inch", 31.5, true},
		{"DP-1", 0, false},
		{"no size here", 0, false},
	}
	for _, tt := range tests {
		got, ok := diagonalInches(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("diagonalInches(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
