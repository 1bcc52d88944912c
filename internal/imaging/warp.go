package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
)

// WarpPerspective resamples src through a projective transform.
//
// Parameters:
//   - src: Source image in any colour model.
//   - h: Transform mapping source coordinates onto output coordinates.
//   - width, height: Output size in pixels, each at least 1.
//
// Returns:
//   - *image.NRGBA: The warped image. Each output pixel is sampled from the
//     source by inverse mapping with bilinear interpolation; samples falling
//     outside the source contribute transparent black.
//   - error: Non-nil if h cannot be inverted or the size is invalid.
func WarpPerspective(src image.Image, h geometry.Homography, width, height int) (*image.NRGBA, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("failed to warp: invalid output size %dx%d", width, height)
	}
	inv, err := h.Inverse()
	if err != nil {
		return nil, fmt.Errorf("failed to invert transform: %w", err)
	}

	source := imaging.Clone(src)
	sw, sh := source.Bounds().Dx(), source.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx, sy, ok := inv.Apply(float64(x), float64(y))
			if !ok || math.IsNaN(sx) || math.IsNaN(sy) {
				continue
			}
			// Skip samples whose whole 2x2 footprint is outside the source.
			if sx <= -1 || sy <= -1 || sx >= float64(sw) || sy >= float64(sh) {
				continue
			}
			sampleBilinear(source, sw, sh, sx, sy, dst.Pix[y*dst.Stride+4*x:y*dst.Stride+4*x+4])
		}
	}
	return dst, nil
}

// sampleBilinear writes the interpolated RGBA value at (sx, sy) into out.
// Neighbours outside the image count as transparent black.
func sampleBilinear(src *image.NRGBA, w, h int, sx, sy float64, out []uint8) {
	x0 := int(math.Floor(sx))
	y0 := int(math.Floor(sy))
	fx := sx - float64(x0)
	fy := sy - float64(y0)

	var acc [4]float64
	weights := [4]float64{(1 - fx) * (1 - fy), fx * (1 - fy), (1 - fx) * fy, fx * fy}
	offsets := [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

	for k, off := range offsets {
		px, py := x0+off[0], y0+off[1]
		if px < 0 || py < 0 || px >= w || py >= h || weights[k] == 0 {
			continue
		}
		i := py*src.Stride + 4*px
		for c := 0; c < 4; c++ {
			acc[c] += weights[k] * float64(src.Pix[i+c])
		}
	}
	for c := 0; c < 4; c++ {
		out[c] = uint8(math.Min(255, math.Max(0, math.Round(acc[c]))))
	}
}

// Rotate90 rotates img 90 degrees counter-clockwise about its centre. The
// output's width and height are the input's height and width.
func Rotate90(img image.Image) *image.NRGBA {
	return imaging.Rotate90(img)
}
