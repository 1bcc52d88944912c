package imaging

import (
	"image"
	"math"
)

// EdgeDetectResult contains an edge map encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) represent detected
// edges and black pixels (0) represent non-edges.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// NewEdgeDetectResult encodes an edge map for transport.
func NewEdgeDetectResult(edges *image.Gray) (*EdgeDetectResult, error) {
	encoded, err := EncodeBase64PNG(edges)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, v := range edges.Pix {
		if v != 0 {
			count++
		}
	}

	b := edges.Bounds()
	return &EdgeDetectResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		EdgePixels:  count,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// tan22 is tan(22.5°), the boundary between gradient direction sectors.
const tan22 = 0.4142135623730950488016887242097

// Canny performs Canny edge detection on a single-channel image.
//
// Parameters:
//   - gray: Source image. It is not smoothed first; pass a binarized or
//     pre-blurred image.
//   - low: Hysteresis low threshold on the gradient magnitude. Typical
//     value: 50.
//   - high: Hysteresis high threshold. Typical value: 150.
//
// Returns a binary edge map of the same size: 255 on edges, 0 elsewhere.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators with replicated borders,
//     magnitude = |Gx| + |Gy|
//
//  2. Non-maximum suppression: the gradient direction is quantized into
//     horizontal, vertical and two diagonal sectors and a pixel survives
//     only if it is a local maximum across the edge. Ties are broken toward
//     the earlier neighbour so that a step edge yields a one pixel wide line.
//
//  3. Hysteresis: pixels above high seed edges, which then grow through
//     8-connected pixels above low.
func Canny(gray *image.Gray, low, high float64) *image.Gray {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return out
	}
	if low > high {
		low, high = high, low
	}

	at := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return float64(gray.Pix[y*gray.Stride+x])
	}

	gradX := make([]float64, width*height)
	gradY := make([]float64, width*height)
	magnitude := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := (at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x-1, y) + at(x-1, y+1))
			gy := (at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1))
			i := y*width + x
			gradX[i], gradY[i] = gx, gy
			magnitude[i] = math.Abs(gx) + math.Abs(gy)
		}
	}

	mag := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return magnitude[y*width+x]
	}

	// Non-maximum suppression: 0 = suppressed, 1 = weak, 2 = strong.
	class := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := magnitude[i]
			if m <= low {
				continue
			}

			ax, ay := math.Abs(gradX[i]), math.Abs(gradY[i])
			var keep bool
			switch {
			case ay < ax*tan22:
				keep = m > mag(x-1, y) && m >= mag(x+1, y)
			case ay > ax*(tan22+2):
				keep = m > mag(x, y-1) && m >= mag(x, y+1)
			default:
				s := 1
				if (gradX[i] < 0) != (gradY[i] < 0) {
					s = -1
				}
				keep = m > mag(x-s, y-1) && m > mag(x+s, y+1)
			}
			if !keep {
				continue
			}
			if m > high {
				class[i] = 2
			} else {
				class[i] = 1
			}
		}
	}

	// Hysteresis: grow strong edges through connected weak pixels.
	stack := make([]int, 0, 1024)
	for i, c := range class {
		if c == 2 {
			out.Pix[(i/width)*out.Stride+i%width] = 255
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if class[j] == 1 && out.Pix[ny*out.Stride+nx] == 0 {
					out.Pix[ny*out.Stride+nx] = 255
					stack = append(stack, j)
				}
			}
		}
	}

	return out
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
