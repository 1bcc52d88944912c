package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingular is returned when a projective transform cannot be derived or
// inverted, typically because three or more of the control points are
// collinear.
var ErrSingular = errors.New("geometry: singular transform")

// Homography is a 3x3 projective transform in row-major order. The zero
// value is not a valid transform; use Identity or ComputeHomography.
type Homography [9]float64

// Identity returns the identity transform.
func Identity() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// ComputeHomography solves for the transform that maps each src[i] onto
// dst[i]. The ninth coefficient is fixed at 1, leaving an 8x8 linear system
// that is solved by Gaussian elimination with partial pivoting.
//
// Returns ErrSingular (wrapped) when the system has no unique solution or
// produces non-finite coefficients.
func ComputeHomography(src, dst [4]PointF) (Homography, error) {
	if degenerate(src) {
		return Homography{}, fmt.Errorf("%w: three source points are collinear", ErrSingular)
	}
	if degenerate(dst) {
		return Homography{}, fmt.Errorf("%w: three destination points are collinear", ErrSingular)
	}

	var a [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -x * u, -y * u, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -x * v, -y * v, v}
	}

	var scale float64
	for r := range a {
		for c := 0; c < 8; c++ {
			scale = math.Max(scale, math.Abs(a[r][c]))
		}
	}
	if scale == 0 {
		return Homography{}, fmt.Errorf("%w: all control points at origin", ErrSingular)
	}
	tolerance := scale * 1e-12

	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) <= tolerance {
			return Homography{}, fmt.Errorf("%w: zero pivot in column %d", ErrSingular, col)
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h[i] = a[i][8] / a[i][i]
	}
	h[8] = 1

	for _, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Homography{}, fmt.Errorf("%w: non-finite coefficient", ErrSingular)
		}
	}
	return h, nil
}

// Apply maps (x, y) through h. ok is false when the point maps to infinity.
func (h Homography) Apply(x, y float64) (u, v float64, ok bool) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 {
		return 0, 0, false
	}
	u = (h[0]*x + h[1]*y + h[2]) / w
	v = (h[3]*x + h[4]*y + h[5]) / w
	return u, v, true
}

// Inverse returns the transform that undoes h.
func (h Homography) Inverse() (Homography, error) {
	a, b, c := h[0], h[1], h[2]
	d, e, f := h[3], h[4], h[5]
	g, k, l := h[6], h[7], h[8]

	co0 := e*l - f*k
	co1 := f*g - d*l
	co2 := d*k - e*g
	det := a*co0 + b*co1 + c*co2
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Homography{}, fmt.Errorf("%w: determinant %v", ErrSingular, det)
	}

	inv := Homography{
		co0, c*k - b*l, b*f - c*e,
		co1, a*l - c*g, c*d - a*f,
		co2, b*g - a*k, a*e - b*d,
	}
	for i := range inv {
		inv[i] /= det
	}
	return inv, nil
}

// degenerate reports whether any three of the points are collinear, in
// which case no projective transform through them exists.
func degenerate(pts [4]PointF) bool {
	var extent float64
	for _, p := range pts {
		extent = math.Max(extent, math.Max(math.Abs(p.X-pts[0].X), math.Abs(p.Y-pts[0].Y)))
	}
	if extent == 0 {
		return true
	}
	tolerance := extent * extent * 1e-9

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			for k := j + 1; k < 4; k++ {
				a, b, c := pts[i], pts[j], pts[k]
				cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
				if math.Abs(cross) <= tolerance {
					return true
				}
			}
		}
	}
	return false
}
