package detection

import (
	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right corner, both
// inclusive.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// BoundsOf returns the bounding box of c. The zero Bounds is returned for an
// empty contour.
func BoundsOf(c geometry.Contour) Bounds {
	if len(c) == 0 {
		return Bounds{}
	}
	b := Bounds{X1: c[0].X, Y1: c[0].Y, X2: c[0].X, Y2: c[0].Y}
	for _, p := range c[1:] {
		b.X1 = min(b.X1, p.X)
		b.Y1 = min(b.Y1, p.Y)
		b.X2 = max(b.X2, p.X)
		b.Y2 = max(b.Y2, p.Y)
	}
	return b
}

// Candidate is a traced contour after polygon simplification.
type Candidate struct {
	// Index is the position of the source contour in discovery order.
	Index int `json:"index"`

	// Polygon is the simplified outline.
	Polygon geometry.Contour `json:"polygon"`

	// Perimeter is the closed arc length of the source contour.
	Perimeter float64 `json:"perimeter"`

	// Area is the area enclosed by Polygon.
	Area float64 `json:"area"`

	// Bounds is the bounding box of Polygon.
	Bounds Bounds `json:"bounds"`
}

// IsQuadrilateral reports whether the simplified outline has four vertices.
func (c Candidate) IsQuadrilateral() bool {
	return len(c.Polygon) == 4
}

// Simplify approximates each contour with a polygon whose tolerance is
// epsilonRatio times the contour's closed perimeter, and annotates it with
// its area. The result preserves the input order.
func Simplify(contours []geometry.Contour, epsilonRatio float64) []Candidate {
	candidates := make([]Candidate, 0, len(contours))
	for i, c := range contours {
		perimeter := geometry.ArcLength(c, true)
		polygon := geometry.ApproxPolyDP(c, epsilonRatio*perimeter, true)
		candidates = append(candidates, Candidate{
			Index:     i,
			Polygon:   polygon,
			Perimeter: perimeter,
			Area:      geometry.Area(polygon),
			Bounds:    BoundsOf(polygon),
		})
	}
	return candidates
}

// SelectQuadrilateral returns the largest four-vertex candidate whose area
// strictly exceeds minArea.
//
// Candidates are examined in order and one only replaces the current best
// when its area is strictly greater, so among equal areas the earliest
// wins. ok is false when no candidate qualifies; that is not an error.
func SelectQuadrilateral(candidates []Candidate, minArea float64) (best Candidate, ok bool) {
	bestArea := 0.0
	for _, c := range candidates {
		if !c.IsQuadrilateral() || c.Area <= minArea {
			continue
		}
		if !ok || c.Area > bestArea {
			best, bestArea, ok = c, c.Area, true
		}
	}
	return best, ok
}

// Quad returns the candidate's four vertices. It must only be called on a
// quadrilateral candidate.
func (c Candidate) Quad() geometry.Quad {
	return geometry.Quad{c.Polygon[0], c.Polygon[1], c.Polygon[2], c.Polygon[3]}
}
