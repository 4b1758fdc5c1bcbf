// Package geom provides the pixel rectangle type shared by every layer of the
// daemon. All window frames, screen frames, and tile targets are normalized to
// Rect at the boundary where they enter the system.
package geom

import "math"

// Rect is a pixel rectangle with a top-left origin. Origins can be negative
// on multi-head setups where a screen sits left of or above the primary.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the rectangle's area, 0 for degenerate rectangles.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Center returns the rectangle's center point.
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.Width)/2, float64(r.Y) + float64(r.Height)/2
}

// ContainsPoint reports whether (x, y) falls inside the rectangle.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Translate returns the rectangle shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Diagonal returns the length of the rectangle's diagonal.
func (r Rect) Diagonal() float64 {
	return math.Hypot(float64(r.Width), float64(r.Height))
}

// Intersect returns the overlapping region of r and o. The zero Rect is
// returned when they are disjoint or either is degenerate.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.Right(), o.Right())
	y2 := min(r.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// OverlapArea returns the area shared by r and o. Symmetric.
func (r Rect) OverlapArea(o Rect) int {
	return r.Intersect(o).Area()
}

// OverlapFraction returns the fraction of r covered by o, in [0, 1].
// Degenerate r yields 0.
func (r Rect) OverlapFraction(o Rect) float64 {
	area := r.Area()
	if area == 0 {
		return 0
	}
	return float64(r.OverlapArea(o)) / float64(area)
}

// SizeSimilarity compares the dimensions of r and o independent of position:
// min/max of widths times min/max of heights, in [0, 1]. Identical sizes
// score 1. Degenerate rectangles score 0.
func (r Rect) SizeSimilarity(o Rect) float64 {
	if r.Empty() || o.Empty() {
		return 0
	}
	w := float64(min(r.Width, o.Width)) / float64(max(r.Width, o.Width))
	h := float64(min(r.Height, o.Height)) / float64(max(r.Height, o.Height))
	return w * h
}

// CenterDistance returns the Euclidean distance between the centers of r
// and o.
func (r Rect) CenterDistance(o Rect) float64 {
	rx, ry := r.Center()
	ox, oy := o.Center()
	return math.Hypot(rx-ox, ry-oy)
}

// ApproxEqual reports whether every edge of r is within tol pixels of the
// corresponding edge of o. Used to decide whether a window settled where it
// was put.
func (r Rect) ApproxEqual(o Rect, tol int) bool {
	return abs(r.X-o.X) <= tol &&
		abs(r.Y-o.Y) <= tol &&
		abs(r.Width-o.Width) <= tol &&
		abs(r.Height-o.Height) <= tol
}

// ClampInto shifts and, if necessary, shrinks r so it fits inside bounds.
// r's size is preserved when it fits at some offset.
func (r Rect) ClampInto(bounds Rect) Rect {
	if r.Width > bounds.Width {
		r.Width = bounds.Width
	}
	if r.Height > bounds.Height {
		r.Height = bounds.Height
	}
	if r.X < bounds.X {
		r.X = bounds.X
	}
	if r.Y < bounds.Y {
		r.Y = bounds.Y
	}
	if r.Right() > bounds.Right() {
		r.X = bounds.Right() - r.Width
	}
	if r.Bottom() > bounds.Bottom() {
		r.Y = bounds.Bottom() - r.Height
	}
	return r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
