package geometry

import "math"

// anchorIterations is the number of farthest-point hops used to pick the two
// split vertices of a closed curve before simplification.
const anchorIterations = 3

// ApproxPolyDP simplifies c with the Douglas-Peucker algorithm. Every
// discarded point lies within epsilon of the output polyline.
//
// For closed curves the curve is first split at two mutually distant
// vertices, found by hopping to the farthest point from the current anchor
// a fixed number of times, and each half is simplified on its own. The
// output always starts at one of those anchors.
func ApproxPolyDP(c Contour, epsilon float64, closed bool) Contour {
	n := len(c)
	if n < 3 || epsilon < 0 {
		out := make(Contour, n)
		copy(out, c)
		return out
	}

	if !closed {
		keep := make([]bool, n)
		keep[0], keep[n-1] = true, true
		simplifySpan(c, 0, n-1, epsilon, keep)
		return collect(c, 0, n, keep)
	}

	start := 0
	far := 0
	var maxDist float64
	for i := 0; i < anchorIterations; i++ {
		if i > 0 {
			start = far
		}
		maxDist = 0
		for j := 1; j < n; j++ {
			k := (start + j) % n
			dx := float64(c[k].X - c[start].X)
			dy := float64(c[k].Y - c[start].Y)
			if d := dx*dx + dy*dy; d > maxDist {
				maxDist = d
				far = k
			}
		}
	}
	if maxDist <= epsilon*epsilon {
		return Contour{c[start]}
	}

	// Unroll the cycle so that start is index 0 and the far anchor sits at
	// index mid, then simplify both halves of the ring.
	ring := make(Contour, n+1)
	for i := 0; i <= n; i++ {
		ring[i] = c[(start+i)%n]
	}
	mid := (far - start + n) % n

	keep := make([]bool, n+1)
	keep[0], keep[mid], keep[n] = true, true, true
	simplifySpan(ring, 0, mid, epsilon, keep)
	simplifySpan(ring, mid, n, epsilon, keep)

	return collect(ring, 0, n, keep)
}

// simplifySpan marks the points between first and last (exclusive) that
// must survive simplification.
func simplifySpan(c Contour, first, last int, epsilon float64, keep []bool) {
	if last-first < 2 {
		return
	}
	a, b := c[first].Float(), c[last].Float()

	index := -1
	var maxDist float64
	for i := first + 1; i < last; i++ {
		if d := segmentDistance(c[i].Float(), a, b); d > maxDist {
			maxDist = d
			index = i
		}
	}
	if index < 0 || maxDist <= epsilon {
		return
	}

	keep[index] = true
	simplifySpan(c, first, index, epsilon, keep)
	simplifySpan(c, index, last, epsilon, keep)
}

// segmentDistance returns the distance from p to the line through a and b,
// or to a itself when the two coincide.
func segmentDistance(p, a, b PointF) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := dx*dx + dy*dy
	if length == 0 {
		ex, ey := p.X-a.X, p.Y-a.Y
		return math.Hypot(ex, ey)
	}
	cross := dx*(p.Y-a.Y) - dy*(p.X-a.X)
	return math.Abs(cross) / math.Sqrt(length)
}

func collect(c Contour, from, to int, keep []bool) Contour {
	out := make(Contour, 0, 8)
	for i := from; i < to; i++ {
		if keep[i] {
			out = append(out, c[i])
		}
	}
	return out
}
