package vision

import (
	"image"

	"github.com/ironsheep/doc-scanner-mcp/internal/detection"
	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
	"github.com/ironsheep/doc-scanner-mcp/internal/imaging"
)

// Native implements Backend in pure Go on top of the imaging and detection
// packages. It needs no cgo and is the default.
type Native struct{}

var _ Backend = Native{}

func (Native) Name() string { return NameNative }

func (Native) Grayscale(img image.Image) (*image.Gray, error) {
	return imaging.Grayscale(img), nil
}

func (Native) AdaptiveThreshold(gray *image.Gray, blockSize int, c float64) (*image.Gray, error) {
	return imaging.AdaptiveThreshold(gray, blockSize, c), nil
}

func (Native) MorphClose(bin *image.Gray, size int) (*image.Gray, error) {
	return imaging.MorphClose(bin, size), nil
}

func (Native) Canny(gray *image.Gray, low, high float64) (*image.Gray, error) {
	return imaging.Canny(gray, low, high), nil
}

func (Native) FindContours(bin *image.Gray) ([]geometry.Contour, error) {
	return detection.FindContours(bin), nil
}

func (Native) WarpPerspective(src image.Image, h geometry.Homography, width, height int) (image.Image, error) {
	return imaging.WarpPerspective(src, h, width, height)
}
