package detection

import (
	"image"

	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
)

// Chain-code directions, counter-clockwise starting east. Y grows downward,
// so "north" is dy = -1.
var directions = [8]struct{ dx, dy int }{
	{1, 0},   // E
	{1, -1},  // NE
	{0, -1},  // N
	{-1, -1}, // NW
	{-1, 0},  // W
	{-1, 1},  // SW
	{0, 1},   // S
	{1, 1},   // SE
}

// directionTo returns the chain code from a to its 8-neighbour b.
func directionTo(ax, ay, bx, by int) int {
	dx, dy := bx-ax, by-ay
	for d, v := range directions {
		if v.dx == dx && v.dy == dy {
			return d
		}
	}
	return -1
}

// FindContours traces every border in a binary image.
//
// Non-zero pixels are foreground. Both outer borders of foreground regions
// and borders of holes inside them are returned as one flat list, in the
// raster order of the pixel each border was first discovered from. Straight
// horizontal, vertical and diagonal runs are compressed to their end points.
//
// # Algorithm
//
// Topological border following (Suzuki & Abe, 1985): the image is scanned
// row by row; a 0→1 transition starts an outer border and a 1→0 transition
// on an unlabelled or already-inside pixel starts a hole border. Each border
// is followed with an 8-neighbourhood search and its pixels are labelled
// with a per-border number, negated on pixels whose east neighbour is
// background, so that no border is traced twice.
func FindContours(img *image.Gray) []geometry.Contour {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	// Labels with a one pixel zero frame: index (y+1)*stride + (x+1).
	stride := w + 2
	f := make([]int32, stride*(h+2))
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for x, v := range row {
			if v != 0 {
				f[(y+1)*stride+x+1] = 1
			}
		}
	}

	var contours []geometry.Contour
	nbd := int32(1)
	for i := 1; i <= h; i++ {
		for j := 1; j <= w; j++ {
			p := f[i*stride+j]
			var fromJ int
			switch {
			case p == 1 && f[i*stride+j-1] == 0:
				fromJ = j - 1
			case p >= 1 && f[i*stride+j+1] == 0:
				fromJ = j + 1
			default:
				continue
			}

			nbd++
			path := followBorder(f, stride, i, j, i, fromJ, nbd)
			contours = append(contours, compressChain(path))
		}
	}
	return contours
}

// followBorder traces one border starting at (i, j) whose background
// neighbour is (i2, j2) and returns the visited pixels in image coordinates.
func followBorder(f []int32, stride, i, j, i2, j2 int, nbd int32) []geometry.Point {
	at := func(r, c int) int32 { return f[r*stride+c] }
	pt := func(r, c int) geometry.Point { return geometry.Point{X: c - 1, Y: r - 1} }

	// Clockwise search around (i, j) for the first foreground neighbour.
	start := directionTo(j, i, j2, i2)
	i1, j1 := -1, -1
	for k := 0; k < 8; k++ {
		d := directions[(start-k+8)%8]
		if at(i+d.dy, j+d.dx) != 0 {
			i1, j1 = i+d.dy, j+d.dx
			break
		}
	}
	if i1 < 0 {
		f[i*stride+j] = -nbd
		return []geometry.Point{pt(i, j)}
	}

	path := []geometry.Point{pt(i, j)}
	i2, j2 = i1, j1
	i3, j3 := i, j
	for {
		// Counter-clockwise search around (i3, j3), starting just after
		// (i2, j2).
		from := directionTo(j3, i3, j2, i2)
		eastExamined := false
		i4, j4 := -1, -1
		for k := 1; k <= 8; k++ {
			dir := (from + k) % 8
			d := directions[dir]
			if at(i3+d.dy, j3+d.dx) != 0 {
				i4, j4 = i3+d.dy, j3+d.dx
				break
			}
			if dir == 0 {
				eastExamined = true
			}
		}

		switch {
		case eastExamined:
			f[i3*stride+j3] = -nbd
		case at(i3, j3) == 1:
			f[i3*stride+j3] = nbd
		}

		if i4 == i && j4 == j && i3 == i1 && j3 == j1 {
			return path
		}
		path = append(path, pt(i4, j4))
		i2, j2 = i3, j3
		i3, j3 = i4, j4
	}
}

// compressChain keeps only the points where the chain direction changes.
func compressChain(path []geometry.Point) geometry.Contour {
	n := len(path)
	if n <= 2 {
		out := make(geometry.Contour, n)
		copy(out, path)
		return out
	}

	out := make(geometry.Contour, 0, 8)
	for k := 0; k < n; k++ {
		prev := path[(k-1+n)%n]
		cur := path[k]
		next := path[(k+1)%n]
		in := directionTo(prev.X, prev.Y, cur.X, cur.Y)
		outDir := directionTo(cur.X, cur.Y, next.X, next.Y)
		if in != outDir {
			out = append(out, cur)
		}
	}
	if len(out) == 0 {
		// A closed loop cannot keep one direction throughout, but guard
		// against degenerate input anyway.
		out = append(out, path[0])
	}
	return out
}
