package rectify

import (
	"image"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/doc-scanner-mcp/internal/detection"
	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
	"github.com/ironsheep/doc-scanner-mcp/internal/imaging"
	"github.com/ironsheep/doc-scanner-mcp/internal/vision"
)

// OutputSuffix replaces the input extension in exported names.
const OutputSuffix = ".cropped.png"

// Overlay stroke widths.
const (
	ContourThickness = 1
	QuadThickness    = 3
)

// Preprocess converts img to grayscale, binarizes it with a Gaussian
// adaptive threshold and closes small gaps with a square element.
func Preprocess(b vision.Backend, img image.Image, opts Options) (*image.Gray, error) {
	gray, err := b.Grayscale(img)
	if err != nil {
		return nil, processingError(StagePreprocess, err)
	}
	bin, err := b.AdaptiveThreshold(gray, opts.AdaptiveThresholdBlockSize, opts.AdaptiveThresholdC)
	if err != nil {
		return nil, processingError(StagePreprocess, err)
	}
	closed, err := b.MorphClose(bin, opts.MorphKernelSize)
	if err != nil {
		return nil, processingError(StagePreprocess, err)
	}
	return closed, nil
}

// DetectEdges returns the Canny edge map of a binarized image.
func DetectEdges(b vision.Backend, bin *image.Gray, opts Options) (*image.Gray, error) {
	edges, err := b.Canny(bin, opts.CannyLow, opts.CannyHigh)
	if err != nil {
		return nil, processingError(StageEdges, err)
	}
	return edges, nil
}

// ExtractContours traces every border of the edge map and simplifies each
// one. Both slices are in discovery order.
func ExtractContours(b vision.Backend, edges *image.Gray, opts Options) ([]geometry.Contour, []detection.Candidate, error) {
	contours, err := b.FindContours(edges)
	if err != nil {
		return nil, nil, processingError(StageContours, err)
	}
	return contours, detection.Simplify(contours, opts.ApproxEpsilonRatio), nil
}

// SelectQuadrilateral picks the largest qualifying quadrilateral. See
// detection.SelectQuadrilateral for the tie-break rule.
func SelectQuadrilateral(candidates []detection.Candidate, opts Options) (detection.Candidate, bool) {
	return detection.SelectQuadrilateral(candidates, opts.MinArea)
}

// Rectify maps quad onto an upright rectangle sized by its longer opposite
// edges and resamples img into it. It returns the warped image and the
// corners in canonical order.
func Rectify(b vision.Backend, img image.Image, quad geometry.Quad) (image.Image, geometry.Quad, error) {
	ordered := geometry.OrderCorners(quad)
	width, height := geometry.TargetSize(ordered)

	var src, dst [4]geometry.PointF
	for i, p := range ordered {
		src[i] = p.Float()
	}
	w, h := float64(width-1), float64(height-1)
	dst[0] = geometry.PointF{X: 0, Y: 0}
	dst[1] = geometry.PointF{X: w, Y: 0}
	dst[2] = geometry.PointF{X: w, Y: h}
	dst[3] = geometry.PointF{X: 0, Y: h}

	hom, err := geometry.ComputeHomography(src, dst)
	if err != nil {
		return nil, ordered, processingError(StageRectify, err)
	}
	warped, err := b.WarpPerspective(img, hom, width, height)
	if err != nil {
		return nil, ordered, processingError(StageRectify, err)
	}
	return warped, ordered, nil
}

// NormalizeOrientation rotates a landscape image 90 degrees
// counter-clockwise. Square and portrait images are returned as is.
func NormalizeOrientation(img image.Image) (image.Image, bool) {
	b := img.Bounds()
	if b.Dx() <= b.Dy() {
		return img, false
	}
	return imaging.Rotate90(img), true
}

// DebugColors are the stroke colours of the debug overlays.
type DebugColors struct {
	Contour color.NRGBA
	Quad    color.NRGBA
}

// DefaultDebugColors draws contours green and the selection red.
func DefaultDebugColors() DebugColors {
	return DebugColors{
		Contour: color.NRGBA{G: 255, A: 255},
		Quad:    color.NRGBA{R: 255, A: 255},
	}
}

// ParseDebugColors builds DebugColors from hex strings. Empty strings keep
// the default.
func ParseDebugColors(contour, quad string) (DebugColors, error) {
	colors := DefaultDebugColors()
	if contour != "" {
		c, err := imaging.ParseColor(contour)
		if err != nil {
			return colors, err
		}
		colors.Contour = c
	}
	if quad != "" {
		c, err := imaging.ParseColor(quad)
		if err != nil {
			return colors, err
		}
		colors.Quad = c
	}
	return colors, nil
}

// DebugImages are the optional diagnostic overlays of a run.
type DebugImages struct {
	// Contours shows every traced contour over the original image.
	Contours *image.NRGBA

	// Selection adds the selected quadrilateral on top of Contours. It
	// equals Contours when nothing was selected.
	Selection *image.NRGBA
}

// RenderDebug draws the overlays. selected is nil when no quadrilateral
// was found.
func RenderDebug(img image.Image, contours []geometry.Contour, selected geometry.Contour, colors DebugColors) *DebugImages {
	overlay := imaging.Canvas(img)
	for _, c := range contours {
		imaging.DrawContour(overlay, c, colors.Contour, ContourThickness)
	}

	selection := imaging.Canvas(overlay)
	if len(selected) > 0 {
		imaging.DrawContour(selection, selected, colors.Quad, QuadThickness)
		for _, p := range selected {
			imaging.DrawLabel(selection, p.X+4, p.Y+4, coordLabel(p), colors.Quad, color.NRGBA{A: 255})
		}
	}
	return &DebugImages{Contours: overlay, Selection: selection}
}

// OutputName derives the exported file name from the input name: the final
// extension is replaced by ".cropped.png", or the suffix is appended when
// there is none.
func OutputName(name string) string {
	return Stem(name) + OutputSuffix
}

// Stem strips any directory and the final extension from name.
func Stem(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "document"
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

func coordLabel(p geometry.Point) string {
	return strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)
}

// DebugNames returns the file names of the contour and selection overlays
// exported for name.
func DebugNames(name string) [2]string {
	stem := Stem(name)
	return [2]string{stem + ".contours.png", stem + ".selection.png"}
}
