// Package vision abstracts the computer-vision primitives the rectification
// pipeline is built from, so the pipeline can run on the pure Go
// implementation or on OpenCV.
//
// # Backends
//
//   - "native": pure Go, always available (see Native).
//   - "gocv": OpenCV through gocv.io/x/gocv, compiled in with the "gocv"
//     build tag and a system OpenCV installation.
//
// Backends hold no per-call state; a single value may serve concurrent
// pipeline runs.
package vision

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
)

// Backend names accepted by New.
const (
	NameNative = "native"
	NameGoCV   = "gocv"
)

// ErrUnavailable is returned by New for a backend that was not compiled in.
var ErrUnavailable = errors.New("vision backend not available in this build")

// Backend provides the raster primitives of document rectification.
//
// Implementations must not modify their inputs and must release any
// native resources they allocate before returning, on success and failure
// alike.
type Backend interface {
	// Name identifies the backend in logs and reports.
	Name() string

	// Grayscale converts img to 8-bit luma (0.299R + 0.587G + 0.114B).
	Grayscale(img image.Image) (*image.Gray, error)

	// AdaptiveThreshold binarizes gray against a Gaussian-weighted local
	// mean over a blockSize square: 255 where src > mean - c, else 0.
	AdaptiveThreshold(gray *image.Gray, blockSize int, c float64) (*image.Gray, error)

	// MorphClose dilates then erodes with a size x size square element.
	MorphClose(bin *image.Gray, size int) (*image.Gray, error)

	// Canny returns the binary edge map of gray.
	Canny(gray *image.Gray, low, high float64) (*image.Gray, error)

	// FindContours lists every outer and hole border of the non-zero
	// pixels, chain-compressed, in discovery order.
	FindContours(bin *image.Gray) ([]geometry.Contour, error)

	// WarpPerspective resamples src through h (source to output) into a
	// width x height image with bilinear interpolation; uncovered pixels
	// are transparent black.
	WarpPerspective(src image.Image, h geometry.Homography, width, height int) (image.Image, error)
}

// New returns the backend registered under name. An empty name selects the
// native backend.
func New(name string) (Backend, error) {
	switch name {
	case "", NameNative:
		return Native{}, nil
	case NameGoCV:
		return newGoCV()
	default:
		return nil, fmt.Errorf("unknown vision backend %q", name)
	}
}

// Available lists the backends compiled into this binary.
func Available() []string {
	names := []string{NameNative}
	if _, err := newGoCV(); err == nil {
		names = append(names, NameGoCV)
	}
	return names
}
