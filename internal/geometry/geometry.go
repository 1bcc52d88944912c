// Package geometry holds the planar primitives used by document detection:
// integer contour points, polygon measures, Douglas-Peucker simplification,
// corner ordering and the projective transform between a detected
// quadrilateral and its upright rectangle.
//
// Coordinates follow the image convention used elsewhere in this module:
// (0,0) is the top-left pixel, X grows rightward and Y grows downward.
package geometry

import (
	"math"
	"sort"
)

// Point is an integer pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Float returns p as a floating-point coordinate.
func (p Point) Float() PointF {
	return PointF{X: float64(p.X), Y: float64(p.Y)}
}

// PointF is a sub-pixel coordinate.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Contour is an ordered, implicitly closed sequence of points.
type Contour []Point

// Quad is a four-vertex polygon. After OrderCorners the vertices are
// top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// Contour returns the quad's vertices as a contour.
func (q Quad) Contour() Contour {
	return Contour{q[0], q[1], q[2], q[3]}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// ArcLength returns the perimeter of c. When closed is true the segment from
// the last point back to the first is included.
func ArcLength(c Contour, closed bool) float64 {
	if len(c) < 2 {
		return 0
	}
	var length float64
	for i := 1; i < len(c); i++ {
		length += Distance(c[i-1], c[i])
	}
	if closed {
		length += Distance(c[len(c)-1], c[0])
	}
	return length
}

// Area returns the absolute area enclosed by c using the shoelace formula.
// Self-intersecting polygons yield the net signed area's magnitude.
func Area(c Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	var sum int64
	for i := range c {
		j := (i + 1) % len(c)
		sum += int64(c[i].X)*int64(c[j].Y) - int64(c[j].X)*int64(c[i].Y)
	}
	return math.Abs(float64(sum)) / 2
}

// OrderCorners returns the four points in canonical order: top-left,
// top-right, bottom-right, bottom-left.
//
// Points are sorted by Y; the two smallest form the top pair and the two
// largest the bottom pair, and each pair is then sorted by X. The result is
// independent of the input order as long as no two points share a Y value
// that straddles the top/bottom split.
func OrderCorners(pts [4]Point) Quad {
	sorted := pts
	sort.SliceStable(sorted[:], func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	top := []Point{sorted[0], sorted[1]}
	bottom := []Point{sorted[2], sorted[3]}
	sort.SliceStable(top, func(i, j int) bool { return top[i].X < top[j].X })
	sort.SliceStable(bottom, func(i, j int) bool { return bottom[i].X < bottom[j].X })

	return Quad{top[0], top[1], bottom[1], bottom[0]}
}

// TargetSize returns the dimensions of the upright rectangle a quad in
// canonical order is mapped onto: the longer of the two horizontal edges and
// the longer of the two vertical edges, rounded, never below one pixel.
func TargetSize(q Quad) (width, height int) {
	tl, tr, br, bl := q[0], q[1], q[2], q[3]
	w := math.Max(Distance(br, bl), Distance(tr, tl))
	h := math.Max(Distance(tr, br), Distance(tl, bl))
	return atLeastOne(w), atLeastOne(h)
}

func atLeastOne(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	return n
}
