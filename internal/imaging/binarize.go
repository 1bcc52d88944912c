package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Grayscale converts img to a single-channel luma image using ITU-R BT.601
// weights (0.299*R + 0.587*G + 0.114*B). Alpha is ignored.
func Grayscale(img image.Image) *image.Gray {
	return redChannel(imaging.Grayscale(img))
}

// GaussianSigma returns the standard deviation used for a Gaussian kernel
// of the given size when none is specified explicitly.
func GaussianSigma(ksize int) float64 {
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

// AdaptiveThreshold binarizes gray against a Gaussian-weighted local mean.
//
// Parameters:
//   - gray: Source luma image.
//   - blockSize: Side of the square neighbourhood, odd and at least 3.
//     Typical value: 11.
//   - c: Constant subtracted from the weighted mean. Typical value: 2.
//
// Returns a binary image where a pixel is 255 if its value is strictly
// greater than (mean - c) and 0 otherwise. The mean is computed with a
// separable Gaussian of sigma GaussianSigma(blockSize), replicating border
// pixels, and rounded to 8 bits before the comparison.
func AdaptiveThreshold(gray *image.Gray, blockSize int, c float64) *image.Gray {
	weights := gaussianWeights(blockSize, GaussianSigma(blockSize))

	horizontal := convolution.NewKernel(blockSize, 1)
	vertical := convolution.NewKernel(1, blockSize)
	copy(horizontal.Matrix, weights)
	copy(vertical.Matrix, weights)

	opts := &convolution.Options{Bias: 0.5, Wrap: false, KeepAlpha: true}
	mean := convolution.Convolve(convolution.Convolve(gray, horizontal, opts), vertical, opts)

	b := gray.Bounds()
	out := image.NewGray(b)
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		avg := mean.Pix[y*mean.Stride : y*mean.Stride+4*w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := 0; x < w; x++ {
			if float64(src[x]) > float64(avg[4*x])-c {
				dst[x] = 255
			}
		}
	}
	return out
}

// MorphClose performs a morphological closing (dilation followed by
// erosion) with a size x size square structuring element, filling dark gaps
// narrower than the element.
func MorphClose(gray *image.Gray, size int) *image.Gray {
	if size <= 1 {
		return cloneGray(gray)
	}
	radius := float64(size-1) / 2
	return redChannel(effect.Erode(effect.Dilate(gray, radius), radius))
}

// gaussianWeights returns a normalized 1-D Gaussian kernel.
func gaussianWeights(size int, sigma float64) []float64 {
	weights := make([]float64, size)
	center := float64(size-1) / 2
	var sum float64
	for i := range weights {
		d := float64(i) - center
		weights[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// redChannel copies the first channel of a 4-channel image whose channels
// hold identical values into a new Gray image.
func redChannel(img image.Image) *image.Gray {
	var pix []uint8
	var stride int
	switch m := img.(type) {
	case *image.NRGBA:
		pix, stride = m.Pix, m.Stride
	case *image.RGBA:
		pix, stride = m.Pix, m.Stride
	default:
		return toGray(img)
	}

	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := pix[y*stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = row[4*x]
		}
	}
	return out
}

// toGray converts any image to Gray through the standard colour model.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

func cloneGray(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], gray.Pix[y*gray.Stride:])
	}
	return out
}
