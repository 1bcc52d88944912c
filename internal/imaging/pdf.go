package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/draw"
)

// PDFRenderScale is the factor applied to a page's size in points when it
// is rasterized.
const PDFRenderScale = 2.0

// ErrNoRaster is returned when the first PDF page carries no embedded
// raster image that could be decoded.
var ErrNoRaster = errors.New("pdf page has no decodable raster image")

// RasterizePDF renders the first page of a PDF document.
//
// Scanned and photographed documents store each page as one embedded
// image. The largest decodable image on page 1 is resampled with a bilinear
// filter to PDFRenderScale times the page's MediaBox size in points.
// Vector-only pages are not rendered and yield ErrNoRaster.
func RasterizePDF(data []byte) (img image.Image, err error) {
	// pdfcpu panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("failed to parse pdf: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()

	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf page dimensions: %w", err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("failed to read pdf: document has no pages")
	}

	pages, err := api.ExtractImagesRaw(bytes.NewReader(data), []string{"1"}, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to extract pdf images: %w", err)
	}

	var best image.Image
	var bestArea int
	for _, page := range pages {
		for _, embedded := range page {
			decoded, _, decodeErr := image.Decode(embedded)
			if decodeErr != nil {
				// JPEG 2000 and other filters without a Go decoder.
				continue
			}
			b := decoded.Bounds()
			if area := b.Dx() * b.Dy(); area > bestArea {
				best, bestArea = decoded, area
			}
		}
	}
	if best == nil {
		return nil, ErrNoRaster
	}

	width := int(math.Round(dims[0].Width * PDFRenderScale))
	height := int(math.Round(dims[0].Height * PDFRenderScale))
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("failed to rasterize pdf: invalid page size %.1fx%.1f", dims[0].Width, dims[0].Height)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), best, best.Bounds(), draw.Src, nil)
	return dst, nil
}
