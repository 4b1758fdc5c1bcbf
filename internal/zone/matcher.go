package zone

import (
	"sort"

	"github.com/1broseidon/gridzones/internal/geom"
)

// Thresholds for acting on a match score.
const (
	// MatchThreshold is the minimum score to auto-place a new or
	// unassigned window into a zone.
	MatchThreshold = 0.4
	// RemapThreshold is the stricter minimum used when bulk-remapping
	// managed windows after a display change.
	RemapThreshold = 0.5
)

// Scoring weights. Overlap dominates, then how closely the sizes agree,
// then how near the centers are relative to the screen diagonal.
const (
	overlapWeight = 0.50
	sizeWeight    = 0.30
	centerWeight  = 0.20
)

// Match is a scored zone candidate for a window frame.
type Match struct {
	Zone      *Zone
	TileIndex int
	Score     float64
}

// BestMatch scores a window frame against each zone's best tile and returns
// the winner. Candidates must already be restricted to the window's screen;
// screenFrame is that screen's working area, whose diagonal normalizes the
// center-distance term.
//
// Zones are evaluated in ID order and only a strictly better score replaces
// the current best, so equal scores resolve to the lexicographically
// smallest zone ID.
func BestMatch(frame geom.Rect, zones []*Zone, screenFrame geom.Rect) (Match, bool) {
	diag := screenFrame.Diagonal()
	ordered := append([]*Zone(nil), zones...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	best := Match{TileIndex: -1}
	found := false
	for _, z := range ordered {
		for i, tile := range z.Tiles {
			s := Score(frame, tile.Rect, diag)
			if !found || s > best.Score {
				best = Match{Zone: z, TileIndex: i, Score: s}
				found = true
			}
		}
	}
	return best, found
}

// Score rates how well a tile rectangle fits a window frame, in [0, 1].
func Score(frame, tile geom.Rect, screenDiagonal float64) float64 {
	overlap := frame.OverlapFraction(tile)
	size := frame.SizeSimilarity(tile)
	center := 0.0
	if screenDiagonal > 0 {
		d := frame.CenterDistance(tile) / screenDiagonal
		if d > 1 {
			d = 1
		}
		center = 1 - d
	}
	return overlapWeight*overlap + sizeWeight*size + centerWeight*center
}
