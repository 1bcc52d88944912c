package rectify

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ironsheep/doc-scanner-mcp/internal/detection"
	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
	"github.com/ironsheep/doc-scanner-mcp/internal/imaging"
	"github.com/ironsheep/doc-scanner-mcp/internal/logging"
	"github.com/ironsheep/doc-scanner-mcp/internal/vision"
)

var errEmptyImage = errors.New("image has no pixels")

// largeInputPixels is the size above which the native closing, which sorts
// the whole structuring element at every pixel, runs for seconds.
var largeInputPixels = 8_000_000

// Result is the outcome of a successful run.
type Result struct {
	// Image is the rectified portrait image, or the original input
	// unchanged when Detected is false.
	Image image.Image

	// Detected reports whether a document boundary was found.
	Detected bool

	// Quad holds the selected corners in canonical order (top-left,
	// top-right, bottom-right, bottom-left). Zero when Detected is false.
	Quad geometry.Quad

	// Polygon is the selected quadrilateral as simplified, before corner
	// ordering.
	Polygon geometry.Contour

	// Contours is the number of traced contours.
	Contours int

	// Candidates is the number of simplified contours with four vertices.
	Candidates int

	// Rotated reports whether the rectified image was turned to portrait.
	Rotated bool

	// Debug holds the overlays when debugging is enabled and rendering
	// succeeded.
	Debug *DebugImages
}

// Artifact is an exported run: the PNG output and what describes it.
type Artifact struct {
	Name     string        `json:"name"`
	Data     []byte        `json:"-"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Detected bool          `json:"detected"`
	Rotated  bool          `json:"rotated"`
	Quad     geometry.Quad `json:"quad"`

	// Debug holds the PNG-encoded contour and selection overlays, in that
	// order, when debugging was enabled.
	Debug [][]byte `json:"-"`
}

// Pipeline runs the rectification stages on a vision backend.
//
// A Pipeline is immutable; derive variants with WithOptions.
type Pipeline struct {
	backend vision.Backend
	opts    Options
	logger  *slog.Logger
	colors  DebugColors
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger stage timings and debug failures go to.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDebugColors sets the overlay colours.
func WithDebugColors(colors DebugColors) Option {
	return func(p *Pipeline) {
		p.colors = colors
	}
}

// New creates a pipeline. A nil backend selects vision.Native.
func New(backend vision.Backend, opts Options, options ...Option) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline options: %w", err)
	}
	if backend == nil {
		backend = vision.Native{}
	}
	p := &Pipeline{
		backend: backend,
		opts:    opts,
		logger:  logging.Discard(),
		colors:  DefaultDebugColors(),
	}
	for _, o := range options {
		o(p)
	}
	return p, nil
}

// Options returns the options the pipeline runs with.
func (p *Pipeline) Options() Options { return p.opts }

// Backend returns the vision backend.
func (p *Pipeline) Backend() vision.Backend { return p.backend }

// WithOptions returns a copy of p that runs with opts.
func (p *Pipeline) WithOptions(opts Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline options: %w", err)
	}
	cp := *p
	cp.opts = opts
	return &cp, nil
}

// Detection is the outcome of the detection stages.
type Detection struct {
	// Contours holds every traced contour in discovery order.
	Contours []geometry.Contour

	// Candidates holds the simplified contours, parallel to Contours.
	Candidates []detection.Candidate

	// Found reports whether a qualifying quadrilateral was selected.
	Found bool

	// Selected is the chosen candidate. Zero when Found is false.
	Selected detection.Candidate

	// Quad holds the selected corners in canonical order and Width and
	// Height the size of the rectangle they map onto.
	Quad          geometry.Quad
	Width, Height int
}

// Quadrilaterals returns the number of candidates with four vertices.
func (d *Detection) Quadrilaterals() int { return countQuads(d.Candidates) }

// Detect runs the detection stages on img and reports the document
// boundary without resampling anything.
func (p *Pipeline) Detect(img image.Image) (*Detection, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &InputDecodeError{Err: errEmptyImage}
	}
	return p.detect(img, p.logger.With("backend", p.backend.Name()))
}

// Edges returns the edge map the contour stage traces in img.
func (p *Pipeline) Edges(img image.Image) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &InputDecodeError{Err: errEmptyImage}
	}
	bin, err := Preprocess(p.backend, img, p.opts)
	if err != nil {
		return nil, err
	}
	return DetectEdges(p.backend, bin, p.opts)
}

func (p *Pipeline) detect(img image.Image, log *slog.Logger) (*Detection, error) {
	if b := img.Bounds(); p.backend.Name() == vision.NameNative && b.Dx()*b.Dy() > largeInputPixels {
		log.Warn("large input on the native backend; the gocv backend is much faster",
			"width", b.Dx(), "height", b.Dy())
	}

	start := time.Now()
	bin, err := Preprocess(p.backend, img, p.opts)
	if err != nil {
		return nil, err
	}
	log.Debug("stage complete", "stage", StagePreprocess, "elapsed", time.Since(start))

	mark := time.Now()
	edges, err := DetectEdges(p.backend, bin, p.opts)
	if err != nil {
		return nil, err
	}
	log.Debug("stage complete", "stage", StageEdges, "elapsed", time.Since(mark))

	mark = time.Now()
	contours, candidates, err := ExtractContours(p.backend, edges, p.opts)
	if err != nil {
		return nil, err
	}
	log.Debug("stage complete", "stage", StageContours, "elapsed", time.Since(mark),
		"contours", len(contours))

	det := &Detection{Contours: contours, Candidates: candidates}
	det.Selected, det.Found = SelectQuadrilateral(candidates, p.opts)
	if det.Found {
		det.Quad = geometry.OrderCorners(det.Selected.Quad())
		det.Width, det.Height = geometry.TargetSize(det.Quad)
	}
	return det, nil
}

// Run detects the document in img and rectifies it. When no boundary is
// found the result carries img itself and Detected is false.
func (p *Pipeline) Run(img image.Image) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &InputDecodeError{Err: errEmptyImage}
	}
	log := p.logger.With("backend", p.backend.Name())
	start := time.Now()

	det, err := p.detect(img, log)
	if err != nil {
		return nil, err
	}

	res := &Result{Contours: len(det.Contours), Candidates: det.Quadrilaterals()}
	if !det.Found {
		res.Image = img
		log.Debug("no document boundary found", "candidates", res.Candidates)
	} else {
		mark := time.Now()
		warped, ordered, err := Rectify(p.backend, img, det.Selected.Quad())
		if err != nil {
			return nil, err
		}
		res.Detected = true
		res.Quad = ordered
		res.Polygon = det.Selected.Polygon
		res.Image, res.Rotated = NormalizeOrientation(warped)
		log.Debug("stage complete", "stage", StageRectify, "elapsed", time.Since(mark),
			"area", det.Selected.Area, "rotated", res.Rotated)
	}

	if p.opts.Debug {
		res.Debug = p.renderDebug(img, det.Contours, res.Polygon)
	}

	log.Debug("pipeline complete", "detected", res.Detected, "elapsed", time.Since(start))
	return res, nil
}

// Process decodes data, runs the pipeline and exports the result under a
// name derived from name.
func (p *Pipeline) Process(name string, data []byte) (*Artifact, error) {
	img, _, err := imaging.Decode(data)
	if err != nil {
		return nil, &InputDecodeError{Name: name, Err: err}
	}
	res, err := p.Run(img)
	if err != nil {
		var decodeErr *InputDecodeError
		if errors.As(err, &decodeErr) && decodeErr.Name == "" {
			decodeErr.Name = name
		}
		return nil, err
	}
	return p.Export(res, name)
}

// Export encodes a result as PNG. Overlays that fail to encode are logged
// and left out.
func (p *Pipeline) Export(res *Result, name string) (*Artifact, error) {
	data, err := imaging.EncodePNG(res.Image)
	if err != nil {
		return nil, processingError(StageExport, err)
	}
	b := res.Image.Bounds()
	art := &Artifact{
		Name:     OutputName(name),
		Data:     data,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Detected: res.Detected,
		Rotated:  res.Rotated,
		Quad:     res.Quad,
	}
	if res.Debug != nil {
		for _, overlay := range []*image.NRGBA{res.Debug.Contours, res.Debug.Selection} {
			encoded, err := imaging.EncodePNG(overlay)
			if err != nil {
				p.logger.Warn("failed to encode debug overlay", "name", name, "error", err)
				continue
			}
			art.Debug = append(art.Debug, encoded)
		}
	}
	return art, nil
}

// renderDebug draws the overlays, dropping them if rendering panics.
func (p *Pipeline) renderDebug(img image.Image, contours []geometry.Contour, selected geometry.Contour) (debug *DebugImages) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("debug rendering failed", "panic", r)
			debug = nil
		}
	}()
	return RenderDebug(img, contours, selected, p.colors)
}

func countQuads(candidates []detection.Candidate) int {
	n := 0
	for _, c := range candidates {
		if c.IsQuadrilateral() {
			n++
		}
	}
	return n
}
