package grid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/1broseidon/gridzones/internal/geom"
)

// Layout is a grid division of a screen.
type Layout struct {
	Cols int
	Rows int
}

func (l Layout) String() string { return fmt.Sprintf("%dx%d", l.Cols, l.Rows) }

func (l Layout) IsZero() bool { return l.Cols == 0 && l.Rows == 0 }

// ParseLayout parses "COLSxROWS", e.g. "4x3".
func ParseLayout(s string) (Layout, error) {
	c, r, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Layout{}, fmt.Errorf("invalid layout %q: want COLSxROWS", s)
	}
	cols, err := strconv.Atoi(c)
	if err != nil || cols < 1 {
		return Layout{}, fmt.Errorf("invalid layout %q: bad column count", s)
	}
	rows, err := strconv.Atoi(r)
	if err != nil || rows < 1 {
		return Layout{}, fmt.Errorf("invalid layout %q: bad row count", s)
	}
	return Layout{Cols: cols, Rows: rows}, nil
}

// PatternRule maps a screen-name regexp to a layout.
type PatternRule struct {
	Pattern *regexp.Regexp
	Layout  Layout
}

// SizeRule maps an inclusive diagonal-inch range to a layout.
type SizeRule struct {
	MinInches float64
	MaxInches float64
	Layout    Layout
}

// SizeTable holds diagonal-size rules per orientation, in declaration order.
type SizeTable struct {
	Landscape []SizeRule
	Portrait  []SizeRule
}

// Selector resolves the grid layout for a screen. Rules are consulted in
// precedence order: exact name override, name pattern, diagonal size encoded
// in the name, then resolution heuristics. The zero Selector is usable and
// falls straight through to the resolution chain.
type Selector struct {
	Custom   map[string]Layout
	Patterns []PatternRule
	Sizes    SizeTable
}

// Decision is a selected layout plus the rule that produced it.
type Decision struct {
	Layout Layout
	Rule   string
}

// Select resolves the layout for a screen. name is the output name as
// reported by the display server; full is the full pixel frame (not the
// strut-adjusted working area).
func (s *Selector) Select(name string, full geom.Rect) Decision {
	if l, ok := s.Custom[name]; ok {
		return Decision{Layout: l, Rule: "custom:" + name}
	}
	for _, p := range s.Patterns {
		if p.Pattern != nil && p.Pattern.MatchString(name) {
			return Decision{Layout: p.Layout, Rule: "pattern:" + p.Pattern.String()}
		}
	}
	if inches, ok := diagonalInches(name); ok {
		rules := s.Sizes.Landscape
		if full.Height > full.Width {
			rules = s.Sizes.Portrait
		}
		for _, r := range rules {
			if inches >= r.MinInches && inches <= r.MaxInches {
				return Decision{Layout: r.Layout, Rule: fmt.Sprintf("size:%gin", inches)}
			}
		}
	}
	return resolutionFallback(full)
}

var inchPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:-?\s*inch(?:es)?|")`)

// diagonalInches extracts a diagonal size encoded in a screen name, e.g.
// "DELL 27-inch" or `LG 34"`.
func diagonalInches(name string) (float64, bool) {
	m := inchPattern.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// resolutionFallback picks a layout from the pixel frame alone. Portrait
// screens get tall single-column stacks; landscape screens scale the grid
// with resolution, with a dedicated bucket for ultrawides.
func resolutionFallback(full geom.Rect) Decision {
	w, h := full.Width, full.Height
	if h > w {
		if w >= 1440 && h >= 2560 {
			return Decision{Layout: Layout{1, 3}, Rule: "resolution:portrait-1440p"}
		}
		return Decision{Layout: Layout{1, 2}, Rule: "resolution:portrait"}
	}
	aspect := 0.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	switch {
	case w >= 3840 && h >= 2160:
		return Decision{Layout: Layout{4, 3}, Rule: "resolution:4k"}
	case aspect > 2.0 || w >= 3440:
		return Decision{Layout: Layout{4, 2}, Rule: "resolution:ultrawide"}
	case w >= 2560 && h >= 1440:
		return Decision{Layout: Layout{3, 3}, Rule: "resolution:1440p"}
	case w >= 1920 && h >= 1080:
		return Decision{Layout: Layout{3, 2}, Rule: "resolution:1080p"}
	default:
		return Decision{Layout: Layout{2, 2}, Rule: "resolution:default"}
	}
}
