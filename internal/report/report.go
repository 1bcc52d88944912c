// Package report summarizes a batch of rectification runs for the CLI, as
// Markdown for people or JSON for tools.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
	"github.com/ironsheep/doc-scanner-mcp/internal/rectify"
)

// Entry outcomes.
const (
	OutcomeCropped     = "cropped"
	OutcomePassThrough = "pass-through"
	OutcomeFailed      = "failed"
)

// Entry describes one input file.
type Entry struct {
	Input    string         `json:"input"`
	Output   string         `json:"output,omitempty"`
	Outcome  string         `json:"outcome"`
	Width    int            `json:"width,omitempty"`
	Height   int            `json:"height,omitempty"`
	Rotated  bool           `json:"rotated,omitempty"`
	Quad     *geometry.Quad `json:"quad,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration_ns"`
}

// NewEntry builds the entry of a run that produced art, or failed with
// err.
func NewEntry(input, output string, art *rectify.Artifact, err error, d time.Duration) Entry {
	e := Entry{Input: input, Duration: d}
	if err != nil {
		e.Outcome = OutcomeFailed
		e.Error = err.Error()
		return e
	}
	e.Output = output
	e.Width, e.Height = art.Width, art.Height
	e.Rotated = art.Rotated
	if art.Detected {
		q := art.Quad
		e.Quad = &q
		e.Outcome = OutcomeCropped
	} else {
		e.Outcome = OutcomePassThrough
	}
	return e
}

// Report is the summary of one CLI invocation.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Version     string          `json:"version"`
	Backend     string          `json:"backend"`
	Options     rectify.Options `json:"options"`
	Entries     []Entry         `json:"entries"`
}

// Count returns how many entries have the given outcome.
func (r *Report) Count(outcome string) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}

// Writer writes a report in one format.
type Writer interface {
	Write(r *Report) (int, error)
}

// Format names accepted by NewWriter.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// FormatForPath picks the format from a file extension: .md and .markdown
// select Markdown, anything else JSON.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatJSON
	}
}

// NewWriter returns the writer for format.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

func formatQuad(q geometry.Quad) string {
	parts := make([]string, len(q))
	for i, p := range q {
		parts[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}
