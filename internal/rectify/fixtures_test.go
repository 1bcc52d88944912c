package rectify

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
)

// filledImage returns a w x h image in a single colour.
func filledImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// fillPolygon paints every pixel whose centre lies inside poly.
func fillPolygon(img *image.NRGBA, poly []geometry.PointF, c color.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if insidePolygon(poly, float64(x)+0.5, float64(y)+0.5) {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func insidePolygon(poly []geometry.PointF, x, y float64) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// skewedPage draws a white pageW x pageH page rotated by degrees about the
// centre of a black canvas.
func skewedPage(canvas, pageW, pageH int, degrees float64) *image.NRGBA {
	img := filledImage(canvas, canvas, black)
	theta := degrees * math.Pi / 180
	sin, cos := math.Sincos(theta)
	c := float64(canvas) / 2
	hw, hh := float64(pageW)/2, float64(pageH)/2
	corners := [][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	poly := make([]geometry.PointF, 0, 4)
	for _, p := range corners {
		poly = append(poly, geometry.PointF{
			X: c + p[0]*cos - p[1]*sin,
			Y: c + p[0]*sin + p[1]*cos,
		})
	}
	fillPolygon(img, poly, white)
	return img
}

// photoSigma is the edge softness fixtures are photographed with. Detection
// holds for any sigma from 2 to 4; below that the threshold band breaks at
// the corners.
const photoSigma = 3.0

// photographed softens the hard edges of a drawn fixture the way a camera
// lens would.
func photographed(img image.Image, sigma float64) *image.NRGBA {
	return imaging.Blur(img, sigma)
}

// thresholdBand bounds how far outside a bright-on-dark edge the traced
// boundary lies: the adaptive threshold marks the dark side as far as its
// 11 pixel window reaches, widened by the blur.
const thresholdBand = 8

// truthQuad is a keystoned document outline on a 400x500 canvas.
var truthQuad = geometry.Quad{{X: 50, Y: 80}, {X: 350, Y: 60}, {X: 370, Y: 420}, {X: 40, Y: 440}}

func quadPolygon(q geometry.Quad) []geometry.PointF {
	poly := make([]geometry.PointF, 4)
	for i, p := range q {
		poly[i] = p.Float()
	}
	return poly
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
