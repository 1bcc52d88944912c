package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// FormatPDF is the format name reported for PDF input.
const FormatPDF = "pdf"

var (
	// ErrEmptyInput is returned when there are no bytes to decode.
	ErrEmptyInput = errors.New("empty input")

	// ErrUnsupportedFormat is returned when the bytes are not a recognized
	// image or PDF document.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

var pdfMagic = []byte("%PDF-")

// Decode converts encoded bytes into a raster image.
//
// Parameters:
//   - data: The encoded file contents.
//
// Returns:
//   - image.Image: The decoded image, EXIF-oriented for JPEG input.
//   - string: The detected format ("png", "jpeg", "gif", "tiff", "bmp",
//     "webp" or "pdf").
//   - error: Non-nil if the input is empty, of an unknown format, or corrupt.
//
// # Format Detection
//
// The format is detected from the content, never from a file name. PDF
// input is recognized by its "%PDF-" header and rasterized with
// RasterizePDF.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyInput
	}

	if bytes.HasPrefix(data, pdfMagic) {
		img, err := RasterizePDF(data)
		if err != nil {
			return nil, FormatPDF, err
		}
		return img, FormatPDF, nil
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, format, fmt.Errorf("failed to read image header: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	return img, format, nil
}
