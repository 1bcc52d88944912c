package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
)

// ParseColor parses a "#RRGGBB" or "#RGB" hex string into an opaque colour.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Canvas returns an opaque, mutable copy of img for drawing overlays onto.
func Canvas(img image.Image) *image.NRGBA {
	canvas := imaging.Clone(img)
	for i := 3; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = 255
	}
	return canvas
}

// DrawContour strokes the closed polygon c onto dst.
//
// Parameters:
//   - dst: Canvas to draw on; pixels outside its bounds are clipped.
//   - c: Polygon vertices; the last vertex connects back to the first.
//   - col: Stroke colour.
//   - thickness: Stroke width in pixels, at least 1.
func DrawContour(dst *image.NRGBA, c geometry.Contour, col color.NRGBA, thickness int) {
	if len(c) == 0 {
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	if len(c) == 1 {
		stamp(dst, c[0].X, c[0].Y, col, thickness)
		return
	}
	for i := range c {
		drawLine(dst, c[i], c[(i+1)%len(c)], col, thickness)
	}
}

// drawLine rasterizes the segment a-b with Bresenham's algorithm, stamping
// a square brush at every step.
func drawLine(dst *image.NRGBA, a, b geometry.Point, col color.NRGBA, thickness int) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	x, y := a.X, a.Y
	e := dx + dy
	for {
		stamp(dst, x, y, col, thickness)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func stamp(dst *image.NRGBA, cx, cy int, col color.NRGBA, thickness int) {
	lo := -(thickness - 1) / 2
	hi := thickness / 2
	b := dst.Bounds()
	for y := cy + lo; y <= cy+hi; y++ {
		for x := cx + lo; x <= cx+hi; x++ {
			if image.Pt(x, y).In(b) {
				dst.SetNRGBA(x, y, col)
			}
		}
	}
}

// DrawLabel writes text with its top-left corner at (x, y) in the 7x13
// basic font, on a filled background box one pixel wider on every side.
// Pixels outside img are clipped.
func DrawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Height

	box := image.Rect(x-1, y-1, x+width+1, y+height+1).Intersect(img.Bounds())
	for py := box.Min.Y; py < box.Max.Y; py++ {
		for px := box.Min.X; px < box.Max.X; px++ {
			img.SetNRGBA(px, py, bg)
		}
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
