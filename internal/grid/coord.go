// Package grid implements the coordinate language that zone tiles are written
// in and the per-screen layout selection that decides how many cells a screen
// is divided into.
//
// A region token is one of:
//
//	a1          single cell: letter column (a=1), 1-indexed row
//	2,1         single cell, numeric col,row; negatives count from the far
//	            edge (-1 = last)
//	a1:b2       span between two cells, inclusive
//	1,1:-1,2    span using numeric cells
//	50%         left-anchored span covering that share of the columns, all rows
//	full        named region; also center, left-half, right-half, top-half,
//	            bottom-half
//
// Tokens are parsed once at config load into Region values. Resolving a
// Region against a concrete layout clamps out-of-range coordinates and swaps
// inverted corners, so a well-formed token always yields a usable span.
package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/gridzones/internal/geom"
)

// Margins controls the whitespace trimmed from tile rectangles.
type Margins struct {
	Enabled    bool
	Size       int
	ScreenEdge bool
}

// Span is a normalized inclusive cell range: coordinates are 1-indexed,
// within layout bounds, and start <= end on both axes.
type Span struct {
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

func (s Span) String() string {
	return fmt.Sprintf("%d,%d:%d,%d", s.StartCol, s.StartRow, s.EndCol, s.EndRow)
}

// RegionKind discriminates the Region variant.
type RegionKind int

const (
	KindCell RegionKind = iota
	KindSpan
	KindPercent
	KindNamed
)

// Named region identifiers.
const (
	NamedFull       = "full"
	NamedCenter     = "center"
	NamedLeftHalf   = "left-half"
	NamedRightHalf  = "right-half"
	NamedTopHalf    = "top-half"
	NamedBottomHalf = "bottom-half"
)

// Region is a parsed tile token. Cell and span coordinates may still be
// negative or out of range; Resolve clamps them against a concrete layout.
type Region struct {
	Kind RegionKind

	// Cell and span corners. For KindCell only the Start pair is set.
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int

	Percent int    // KindPercent, 1..100
	Name    string // KindNamed

	raw string
}

// String returns the original token text.
func (r Region) String() string { return r.raw }

// ParseError reports a malformed region token.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid region %q: %s", e.Token, e.Reason)
}

func parseErr(token, format string, args ...any) error {
	return &ParseError{Token: token, Reason: fmt.Sprintf(format, args...)}
}

// ParseRegion parses a single tile token.
func ParseRegion(token string) (Region, error) {
	raw := token
	tok := strings.ToLower(strings.TrimSpace(token))
	if tok == "" {
		return Region{}, parseErr(raw, "empty token")
	}

	switch tok {
	case NamedFull, NamedCenter, NamedLeftHalf, NamedRightHalf, NamedTopHalf, NamedBottomHalf:
		return Region{Kind: KindNamed, Name: tok, raw: raw}, nil
	}

	if pct, ok := strings.CutSuffix(tok, "%"); ok {
		n, err := strconv.Atoi(pct)
		if err != nil {
			return Region{}, parseErr(raw, "percentage is not a number")
		}
		if n < 1 || n > 100 {
			return Region{}, parseErr(raw, "percentage must be 1..100")
		}
		return Region{Kind: KindPercent, Percent: n, raw: raw}, nil
	}

	if start, end, ok := strings.Cut(tok, ":"); ok {
		sc, sr, err := parseCell(start)
		if err != nil {
			return Region{}, parseErr(raw, "bad span start: %v", err)
		}
		ec, er, err := parseCell(end)
		if err != nil {
			return Region{}, parseErr(raw, "bad span end: %v", err)
		}
		return Region{Kind: KindSpan, StartCol: sc, StartRow: sr, EndCol: ec, EndRow: er, raw: raw}, nil
	}

	col, row, err := parseCell(tok)
	if err != nil {
		return Region{}, parseErr(raw, "%v", err)
	}
	return Region{Kind: KindCell, StartCol: col, StartRow: row, raw: raw}, nil
}

// parseCell accepts the letter form ("a1", "c-1") and the numeric form
// ("1,2", "-1,-1").
func parseCell(tok string) (col, row int, err error) {
	if tok == "" {
		return 0, 0, fmt.Errorf("empty cell")
	}
	if c, r, ok := strings.Cut(tok, ","); ok {
		col, err = strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			return 0, 0, fmt.Errorf("bad column %q", c)
		}
		row, err = strconv.Atoi(strings.TrimSpace(r))
		if err != nil {
			return 0, 0, fmt.Errorf("bad row %q", r)
		}
		return col, row, nil
	}
	ch := tok[0]
	if ch < 'a' || ch > 'z' {
		return 0, 0, fmt.Errorf("cell must start with a column letter or use col,row form")
	}
	row, err = strconv.Atoi(tok[1:])
	if err != nil {
		return 0, 0, fmt.Errorf("bad row in %q", tok)
	}
	return int(ch-'a') + 1, row, nil
}

// MustParseRegion is ParseRegion for built-in definitions known to be valid.
func MustParseRegion(token string) Region {
	r, err := ParseRegion(token)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve turns the region into a normalized span for the given layout.
// Negative indices are resolved from the far edge, out-of-range coordinates
// clamp to the grid, and inverted corners are swapped.
func (r Region) Resolve(l Layout) (Span, error) {
	if l.Cols <= 0 || l.Rows <= 0 {
		return Span{}, fmt.Errorf("cannot resolve %q: layout %s has no cells", r.raw, l)
	}
	switch r.Kind {
	case KindCell:
		c := clampIndex(r.StartCol, l.Cols)
		w := clampIndex(r.StartRow, l.Rows)
		return Span{StartCol: c, StartRow: w, EndCol: c, EndRow: w}, nil
	case KindSpan:
		s := Span{
			StartCol: clampIndex(r.StartCol, l.Cols),
			StartRow: clampIndex(r.StartRow, l.Rows),
			EndCol:   clampIndex(r.EndCol, l.Cols),
			EndRow:   clampIndex(r.EndRow, l.Rows),
		}
		if s.StartCol > s.EndCol {
			s.StartCol, s.EndCol = s.EndCol, s.StartCol
		}
		if s.StartRow > s.EndRow {
			s.StartRow, s.EndRow = s.EndRow, s.StartRow
		}
		return s, nil
	case KindPercent:
		// Round to the nearest column, at least one.
		end := (l.Cols*r.Percent + 50) / 100
		if end < 1 {
			end = 1
		}
		if end > l.Cols {
			end = l.Cols
		}
		return Span{StartCol: 1, StartRow: 1, EndCol: end, EndRow: l.Rows}, nil
	case KindNamed:
		return namedSpan(r.Name, l)
	default:
		return Span{}, fmt.Errorf("cannot resolve %q: unknown region kind %d", r.raw, r.Kind)
	}
}

// clampIndex resolves a possibly negative 1-indexed coordinate against n
// cells. -1 is the last cell, -2 the one before it. Values past either edge
// clamp to the edge.
func clampIndex(i, n int) int {
	if i < 0 {
		i = n + 1 + i
	}
	if i < 1 {
		return 1
	}
	if i > n {
		return n
	}
	return i
}

func namedSpan(name string, l Layout) (Span, error) {
	switch name {
	case NamedFull:
		return Span{1, 1, l.Cols, l.Rows}, nil
	case NamedLeftHalf:
		return Span{1, 1, max(1, l.Cols/2), l.Rows}, nil
	case NamedRightHalf:
		return Span{min(l.Cols, l.Cols/2+1), 1, l.Cols, l.Rows}, nil
	case NamedTopHalf:
		return Span{1, 1, l.Cols, max(1, l.Rows/2)}, nil
	case NamedBottomHalf:
		return Span{1, min(l.Rows, l.Rows/2+1), l.Cols, l.Rows}, nil
	case NamedCenter:
		// Middle half of each axis: a quarter trimmed from each side,
		// integer division, so small grids degrade toward full.
		cq := l.Cols / 4
		rq := l.Rows / 4
		return Span{cq + 1, rq + 1, l.Cols - cq, l.Rows - rq}, nil
	default:
		return Span{}, fmt.Errorf("unknown named region %q", name)
	}
}

// SpanRect computes the pixel rectangle for a span on a screen frame.
//
// Cell size is the integer division of the frame by the layout. With margins
// enabled, size px is trimmed from every span side at an internal grid border,
// so adjacent tiles sit 2*size apart; with screen_edge also set, sides
// touching the screen boundary are trimmed by size as well. The result never
// extends beyond the frame and never degenerates below 1x1.
func SpanRect(s Span, l Layout, frame geom.Rect, m Margins) geom.Rect {
	cellW := frame.Width / l.Cols
	cellH := frame.Height / l.Rows

	x := frame.X + (s.StartCol-1)*cellW
	y := frame.Y + (s.StartRow-1)*cellH
	w := (s.EndCol - s.StartCol + 1) * cellW
	h := (s.EndRow - s.StartRow + 1) * cellH

	if m.Enabled && m.Size > 0 {
		if s.StartCol > 1 || m.ScreenEdge {
			x += m.Size
			w -= m.Size
		}
		if s.EndCol < l.Cols || m.ScreenEdge {
			w -= m.Size
		}
		if s.StartRow > 1 || m.ScreenEdge {
			y += m.Size
			h -= m.Size
		}
		if s.EndRow < l.Rows || m.ScreenEdge {
			h -= m.Size
		}
	}

	return clampToFrame(geom.Rect{X: x, Y: y, Width: w, Height: h}, frame)
}

// clampToFrame trims r to frame and enforces a minimum usable size. Margins
// larger than a cell would otherwise invert the rectangle.
func clampToFrame(r, frame geom.Rect) geom.Rect {
	if frame.Empty() {
		return frame
	}
	if r.X < frame.X {
		r.X = frame.X
	}
	if r.X > frame.Right()-1 {
		r.X = frame.Right() - 1
	}
	if r.Y < frame.Y {
		r.Y = frame.Y
	}
	if r.Y > frame.Bottom()-1 {
		r.Y = frame.Bottom() - 1
	}
	if r.Right() > frame.Right() {
		r.Width = frame.Right() - r.X
	}
	if r.Bottom() > frame.Bottom() {
		r.Height = frame.Bottom() - r.Y
	}
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}
