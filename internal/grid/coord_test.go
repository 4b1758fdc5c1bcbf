package grid

import (
	"errors"
	"testing"

	"github.com/1broseidon/gridzones/internal/geom"
)

func TestParseRegionForms(t *testing.T) {
	tests := []struct {
		token string
		kind  RegionKind
	}{
		{"a1", KindCell},
		{"C12", KindCell},
		{"2,1", KindCell},
		{"-1,-1", KindCell},
		{"a1:b2", KindSpan},
		{"1,1:-1,2", KindSpan},
		{"50%", KindPercent},
		{"full", KindNamed},
		{"LEFT-HALF", KindNamed},
		{" center ", KindNamed},
	}
	for _, tt := range tests {
		r, err := ParseRegion(tt.token)
		if err != nil {
			t.Errorf("ParseRegion(%q): %v", tt.token, err)
			continue
		}
		if r.Kind != tt.kind {
			t.Errorf("ParseRegion(%q): kind = %d, want %d", tt.token, r.Kind, tt.kind)
		}
	}
}

func TestParseRegionErrors(t *testing.T) {
	bad := []string{"", "1a", "a", "a1:b2:c3", "150%", "0%", "x%", "aa,1x", "strange"}
	for _, token := range bad {
		_, err := ParseRegion(token)
		if err == nil {
			t.Errorf("ParseRegion(%q): expected error", token)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseRegion(%q): error %v is not a *ParseError", token, err)
		}
	}
}

func TestResolveClampsAndSwaps(t *testing.T) {
	l := Layout{Cols: 4, Rows: 3}
	tests := []struct {
		token string
		want  Span
	}{
		{"a1", Span{1, 1, 1, 1}},
		{"b2", Span{2, 2, 2, 2}},
		// Column z clamps to 4, row 99 clamps to 3.
		{"z99", Span{4, 3, 4, 3}},
		{"0,0", Span{1, 1, 1, 1}},
		// -1 = last column/row.
		{"-1,-1", Span{4, 3, 4, 3}},
		{"-2,1", Span{3, 1, 3, 1}},
		// Past the near edge clamps to 1.
		{"-99,1", Span{1, 1, 1, 1}},
		// Inverted corners swap into start <= end.
		{"b2:a1", Span{1, 1, 2, 2}},
		{"-1,1:1,-1", Span{1, 1, 4, 3}},
		{"a1:b3", Span{1, 1, 2, 3}},
	}
	for _, tt := range tests {
		r, err := ParseRegion(tt.token)
		if err != nil {
			t.Fatalf("ParseRegion(%q): %v", tt.token, err)
		}
		got, err := r.Resolve(l)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.token, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestResolveEveryGridSize(t *testing.T) {
	// Any well-formed token resolves to an in-bounds normalized span on any
	// layout the selector can produce.
	layouts := []Layout{{1, 2}, {1, 3}, {2, 2}, {3, 2}, {3, 3}, {4, 2}, {4, 3}}
	tokens := []string{"a1", "d3", "-1,-1", "a1:d3", "33%", "50%", "full", "center",
		"left-half", "right-half", "top-half", "bottom-half"}
	for _, l := range layouts {
		for _, token := range tokens {
			r := MustParseRegion(token)
			s, err := r.Resolve(l)
			if err != nil {
				t.Fatalf("Resolve(%q, %s): %v", token, l, err)
			}
			if s.StartCol < 1 || s.EndCol > l.Cols || s.StartRow < 1 || s.EndRow > l.Rows {
				t.Errorf("Resolve(%q, %s) = %v out of bounds", token, l, s)
			}
			if s.StartCol > s.EndCol || s.StartRow > s.EndRow {
				t.Errorf("Resolve(%q, %s) = %v not normalized", token, l, s)
			}
		}
	}
}

func TestResolveZeroLayout(t *testing.T) {
	r := MustParseRegion("a1")
	if _, err := r.Resolve(Layout{}); err == nil {
		t.Fatalf("expected error resolving against empty layout")
	}
}

func TestResolvePercent(t *testing.T) {
	tests := []struct {
		token string
		l     Layout
		want  Span
	}{
		// 4 cols * 50% = 2.
		{"50%", Layout{4, 3}, Span{1, 1, 2, 3}},
		// 3 cols * 50% = 1.5, rounds to 2.
		{"50%", Layout{3, 2}, Span{1, 1, 2, 2}},
		// 4 cols * 33% = 1.32, rounds to 1.
		{"33%", Layout{4, 3}, Span{1, 1, 1, 3}},
		// Never rounds below one column.
		{"1%", Layout{2, 2}, Span{1, 1, 1, 2}},
		{"100%", Layout{4, 3}, Span{1, 1, 4, 3}},
	}
	for _, tt := range tests {
		got, err := MustParseRegion(tt.token).Resolve(tt.l)
		if err != nil {
			t.Fatalf("Resolve(%q, %s): %v", tt.token, tt.l, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q, %s) = %v, want %v", tt.token, tt.l, got, tt.want)
		}
	}
}

func TestResolveNamed(t *testing.T) {
	l := Layout{Cols: 4, Rows: 3}
	tests := []struct {
		name string
		want Span
	}{
		{"full", Span{1, 1, 4, 3}},
		{"left-half", Span{1, 1, 2, 3}},
		{"right-half", Span{3, 1, 4, 3}},
		{"top-half", Span{1, 1, 4, 1}},
		{"bottom-half", Span{1, 2, 4, 3}},
		// Middle half of 4 columns = 2..3; 3 rows has no quarter to trim.
		{"center", Span{2, 1, 3, 3}},
	}
	for _, tt := range tests {
		got, err := MustParseRegion(tt.name).Resolve(l)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSpanRectNoMargins(t *testing.T) {
	frame := geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	l := Layout{Cols: 4, Rows: 3}
	// cell = 480x360; span b1:c2 covers cols 2-3, rows 1-2.
	s := Span{2, 1, 3, 2}
	got := SpanRect(s, l, frame, Margins{})
	want := geom.Rect{X: 480, Y: 0, Width: 960, Height: 720}
	if got != want {
		t.Fatalf("SpanRect = %+v, want %+v", got, want)
	}
}

func TestSpanRectMarginsScreenEdge(t *testing.T) {
	frame := geom.Rect{X: 100, Y: 50, Width: 1920, Height: 1080}
	l := Layout{Cols: 2, Rows: 2}
	m := Margins{Enabled: true, Size: 10, ScreenEdge: true}

	// cell = 960x540. Top-left cell: trimmed 10 on all four sides
	// (left/top touch the screen, right/bottom are internal borders).
	got := SpanRect(Span{1, 1, 1, 1}, l, frame, m)
	want := geom.Rect{X: 110, Y: 60, Width: 940, Height: 520}
	if got != want {
		t.Fatalf("top-left = %+v, want %+v", got, want)
	}

	// Bottom-right cell: x = 100+960+10 = 1070, width = 960-20 = 940.
	got = SpanRect(Span{2, 2, 2, 2}, l, frame, m)
	want = geom.Rect{X: 1070, Y: 600, Width: 940, Height: 520}
	if got != want {
		t.Fatalf("bottom-right = %+v, want %+v", got, want)
	}

	// Adjacent tiles end up 2*size apart: 1070 - (110+940) = 20.
}

func TestSpanRectMarginsInternalOnly(t *testing.T) {
	frame := geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	l := Layout{Cols: 2, Rows: 2}
	m := Margins{Enabled: true, Size: 10, ScreenEdge: false}

	// Screen-touching sides keep their position; only the internal
	// right/bottom borders are trimmed.
	got := SpanRect(Span{1, 1, 1, 1}, l, frame, m)
	want := geom.Rect{X: 0, Y: 0, Width: 950, Height: 530}
	if got != want {
		t.Fatalf("top-left = %+v, want %+v", got, want)
	}

	// Full span touches no internal border: untouched.
	got = SpanRect(Span{1, 1, 2, 2}, l, frame, m)
	want = geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	if got != want {
		t.Fatalf("full span = %+v, want %+v", got, want)
	}
}

func TestSpanRectDisabledMargins(t *testing.T) {
	frame := geom.Rect{X: 0, Y: 0, Width: 1000, Height: 600}
	l := Layout{Cols: 2, Rows: 1}
	got := SpanRect(Span{2, 1, 2, 1}, l, frame, Margins{Enabled: false, Size: 50})
	want := geom.Rect{X: 500, Y: 0, Width: 500, Height: 600}
	if got != want {
		t.Fatalf("SpanRect = %+v, want %+v", got, want)
	}
}

func TestSpanRectNeverExceedsFrame(t *testing.T) {
	frames := []geom.Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: -1440, Y: 0, Width: 1440, Height: 2560},
		{X: 3840, Y: 200, Width: 2560, Height: 1440},
		{X: 0, Y: 0, Width: 101, Height: 37},
	}
	margins := []Margins{
		{},
		{Enabled: true, Size: 8, ScreenEdge: true},
		{Enabled: true, Size: 8, ScreenEdge: false},
		// Pathological margin wider than a cell.
		{Enabled: true, Size: 5000, ScreenEdge: true},
	}
	l := Layout{Cols: 4, Rows: 3}
	for _, frame := range frames {
		for _, m := range margins {
			for col := 1; col <= l.Cols; col++ {
				for row := 1; row <= l.Rows; row++ {
					r := SpanRect(Span{col, row, col, row}, l, frame, m)
					if r.X < frame.X || r.Y < frame.Y || r.Right() > frame.Right() || r.Bottom() > frame.Bottom() {
						t.Fatalf("cell %d,%d margins %+v: rect %+v exceeds frame %+v", col, row, m, r, frame)
					}
					if r.Width < 1 || r.Height < 1 {
						t.Fatalf("cell %d,%d margins %+v: degenerate rect %+v", col, row, m, r)
					}
				}
			}
		}
	}
}
