package geom

import (
	"math"
	"testing"
)

func TestIntersectDisjoint(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 200, Y: 200, Width: 50, Height: 50}
	if got := a.Intersect(b); !got.Empty() {
		t.Fatalf("expected empty intersection, got %+v", got)
	}
	if got := a.OverlapArea(b); got != 0 {
		t.Fatalf("expected zero overlap area, got %d", got)
	}
}

func TestOverlapAreaSymmetric(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 50, Width: 100, Height: 100}
	// Overlap spans x 50..100, y 50..100 = 50*50 = 2500.
	if got := a.OverlapArea(b); got != 2500 {
		t.Fatalf("OverlapArea(a,b) = %d, want 2500", got)
	}
	if ab, ba := a.OverlapArea(b), b.OverlapArea(a); ab != ba {
		t.Fatalf("overlap area not symmetric: %d vs %d", ab, ba)
	}
}

func TestOverlapFractionSelf(t *testing.T) {
	r := Rect{X: -1440, Y: 0, Width: 1440, Height: 2560}
	if got := r.OverlapFraction(r); got != 1.0 {
		t.Fatalf("self overlap fraction = %v, want 1.0", got)
	}
}

func TestOverlapFractionDegenerate(t *testing.T) {
	var zero Rect
	full := Rect{Width: 100, Height: 100}
	if got := zero.OverlapFraction(full); got != 0 {
		t.Fatalf("degenerate overlap fraction = %v, want 0", got)
	}
}

func TestSizeSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"identical", Rect{Width: 800, Height: 600}, Rect{Width: 800, Height: 600}, 1.0},
		// 400/800 * 600/600 = 0.5
		{"half width", Rect{Width: 800, Height: 600}, Rect{Width: 400, Height: 600}, 0.5},
		// 400/800 * 300/600 = 0.25
		{"half both", Rect{Width: 800, Height: 600}, Rect{Width: 400, Height: 300}, 0.25},
		{"degenerate", Rect{Width: 800, Height: 600}, Rect{}, 0},
	}
	for _, tt := range tests {
		if got := tt.a.SizeSimilarity(tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: SizeSimilarity = %v, want %v", tt.name, got, tt.want)
		}
		if got, rev := tt.a.SizeSimilarity(tt.b), tt.b.SizeSimilarity(tt.a); got != rev {
			t.Errorf("%s: not symmetric: %v vs %v", tt.name, got, rev)
		}
	}
}

func TestCenterDistance(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}  // center (50, 50)
	b := Rect{X: 30, Y: 40, Width: 100, Height: 100} // center (80, 90)
	// sqrt(30^2 + 40^2) = 50
	if got := a.CenterDistance(b); math.Abs(got-50) > 1e-9 {
		t.Fatalf("CenterDistance = %v, want 50", got)
	}
	if got := a.CenterDistance(a); got != 0 {
		t.Fatalf("self distance = %v, want 0", got)
	}
}

func TestDiagonal(t *testing.T) {
	r := Rect{Width: 3, Height: 4}
	if got := r.Diagonal(); math.Abs(got-5) > 1e-9 {
		t.Fatalf("Diagonal = %v, want 5", got)
	}
}

func TestApproxEqual(t *testing.T) {
	a := Rect{X: 100, Y: 100, Width: 800, Height: 600}
	b := Rect{X: 102, Y: 99, Width: 801, Height: 600}
	if !a.ApproxEqual(b, 2) {
		t.Fatalf("rects within tolerance 2 should compare equal")
	}
	if a.ApproxEqual(b, 1) {
		t.Fatalf("x off by 2 should fail tolerance 1")
	}
}

func TestTranslateNegativeOrigin(t *testing.T) {
	// A frame on a screen at x=-1440 moving to a screen at x=0.
	r := Rect{X: -1200, Y: 100, Width: 600, Height: 400}
	got := r.Translate(1440, 0)
	want := Rect{X: 240, Y: 100, Width: 600, Height: 400}
	if got != want {
		t.Fatalf("Translate = %+v, want %+v", got, want)
	}
}

func TestClampInto(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	// Hangs off the right edge: shifted back in, size preserved.
	r := Rect{X: 1800, Y: 100, Width: 400, Height: 300}
	got := r.ClampInto(bounds)
	want := Rect{X: 1520, Y: 100, Width: 400, Height: 300}
	if got != want {
		t.Fatalf("ClampInto = %+v, want %+v", got, want)
	}

	// Larger than bounds: shrunk to fit.
	big := Rect{X: -100, Y: -100, Width: 4000, Height: 3000}
	got = big.ClampInto(bounds)
	if got != bounds {
		t.Fatalf("oversize ClampInto = %+v, want %+v", got, bounds)
	}
}

func TestContainsPoint(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 100, Height: 100}
	if !r.ContainsPoint(10, 10) {
		t.Fatalf("top-left corner should be inside")
	}
	if r.ContainsPoint(110, 10) {
		t.Fatalf("right edge is exclusive")
	}
}
