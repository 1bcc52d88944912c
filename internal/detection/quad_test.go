package detection

import (
	"testing"

	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
)

func square(x, y, side int) geometry.Contour {
	return geometry.Contour{{X: x, Y: y}, {X: x + side, Y: y}, {X: x + side, Y: y + side}, {X: x, Y: y + side}}
}

func candidate(index int, polygon geometry.Contour) Candidate {
	return Candidate{Index: index, Polygon: polygon, Area: geometry.Area(polygon)}
}

func TestSimplify_TracedRectangle(t *testing.T) {
	img := createFilledRect(400, 400, 50, 40, 350, 340)

	candidates := Simplify(FindContours(img), 0.02)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}

	c := candidates[0]
	if !c.IsQuadrilateral() {
		t.Fatalf("polygon: got %d vertices (%v), want 4", len(c.Polygon), c.Polygon)
	}
	if c.Area != 300*300 {
		t.Errorf("area: got %v, want %v", c.Area, 300*300)
	}
	if c.Perimeter != 1200 {
		t.Errorf("perimeter: got %v, want 1200", c.Perimeter)
	}
	if c.Bounds != (Bounds{X1: 50, Y1: 40, X2: 350, Y2: 340}) {
		t.Errorf("bounds: got %+v", c.Bounds)
	}
}

func TestSelectQuadrilateral(t *testing.T) {
	triangle := geometry.Contour{{X: 0, Y: 0}, {X: 400, Y: 0}, {X: 0, Y: 400}}
	pentagon := geometry.Contour{{X: 0, Y: 0}, {X: 400, Y: 0}, {X: 500, Y: 200}, {X: 400, Y: 400}, {X: 0, Y: 400}}

	tests := []struct {
		name       string
		candidates []Candidate
		minArea    float64
		wantOK     bool
		wantIndex  int
	}{
		{
			name:       "no candidates",
			candidates: nil,
			minArea:    50000,
			wantOK:     false,
		},
		{
			name:       "only small quads",
			candidates: []Candidate{candidate(0, square(0, 0, 100)), candidate(1, square(10, 10, 200))},
			minArea:    50000,
			wantOK:     false,
		},
		{
			name:       "area equal to minimum is rejected",
			candidates: []Candidate{candidate(0, square(0, 0, 250))},
			minArea:    62500,
			wantOK:     false,
		},
		{
			name:       "non-quads ignored",
			candidates: []Candidate{candidate(0, triangle), candidate(1, pentagon), candidate(2, square(0, 0, 300))},
			minArea:    50000,
			wantOK:     true,
			wantIndex:  2,
		},
		{
			name:       "largest wins",
			candidates: []Candidate{candidate(0, square(0, 0, 300)), candidate(1, square(0, 0, 400)), candidate(2, square(0, 0, 350))},
			minArea:    50000,
			wantOK:     true,
			wantIndex:  1,
		},
		{
			name:       "tie keeps earliest",
			candidates: []Candidate{candidate(0, square(0, 0, 300)), candidate(1, square(50, 50, 300))},
			minArea:    50000,
			wantOK:     true,
			wantIndex:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectQuadrilateral(tt.candidates, tt.minArea)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Index != tt.wantIndex {
				t.Errorf("selected index: got %d, want %d", got.Index, tt.wantIndex)
			}
			if got.Area <= tt.minArea {
				t.Errorf("selected area %v not above minimum %v", got.Area, tt.minArea)
			}
			for _, c := range tt.candidates {
				if c.IsQuadrilateral() && c.Area > tt.minArea && c.Area > got.Area {
					t.Errorf("candidate %d (area %v) larger than selection (area %v)", c.Index, c.Area, got.Area)
				}
			}
		})
	}
}

func TestBoundsOf(t *testing.T) {
	c := geometry.Contour{{X: 5, Y: 9}, {X: 1, Y: 3}, {X: 7, Y: 2}}
	if got := BoundsOf(c); got != (Bounds{X1: 1, Y1: 2, X2: 7, Y2: 9}) {
		t.Errorf("got %+v", got)
	}
	if got := BoundsOf(nil); got != (Bounds{}) {
		t.Errorf("empty contour: got %+v", got)
	}
}
