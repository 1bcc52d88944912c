package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter writes reports as GitHub-flavoured Markdown.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter writing to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write renders r.
func (w *MarkdownWriter) Write(r *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, r)
	w.writeSummary(md, r)
	w.writeEntries(md, r)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by doc-scanner %s*", r.Version)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *Report) {
	md.H1("Document Scan Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Date", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Backend", r.Backend},
			{"Files", strconv.Itoa(len(r.Entries))},
			{"Minimum area", strconv.FormatFloat(r.Options.MinArea, 'f', -1, 64)},
			{"Canny thresholds", fmt.Sprintf("%g / %g", r.Options.CannyLow, r.Options.CannyHigh)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, r *Report) {
	cropped := r.Count(OutcomeCropped)
	passed := r.Count(OutcomePassThrough)
	failed := r.Count(OutcomeFailed)

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Cropped", strconv.Itoa(cropped)},
			{"Pass-through", strconv.Itoa(passed)},
			{"Failed", strconv.Itoa(failed)},
		},
	})
	md.PlainText("")

	if len(r.Entries) > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Outcomes"),
			piechart.WithShowData(true),
		)
		for _, s := range []struct {
			label string
			n     int
		}{{"Cropped", cropped}, {"Pass-through", passed}, {"Failed", failed}} {
			if s.n > 0 {
				chart.LabelAndIntValue(s.label, uint64(s.n))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case failed > 0:
		md.Warningf("%d file(s) could not be processed.", failed)
	case passed > 0:
		md.Note(fmt.Sprintf("No document boundary was found in %d file(s); the originals were exported unchanged.", passed))
	default:
		md.Tip("Every document was detected and cropped.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeEntries(md *markdown.Markdown, r *Report) {
	md.H2("Files")
	md.PlainText("")
	if len(r.Entries) == 0 {
		md.PlainText("No files were processed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		size := ""
		if e.Outcome != OutcomeFailed {
			size = fmt.Sprintf("%dx%d", e.Width, e.Height)
		}
		corners := ""
		if e.Quad != nil {
			corners = formatQuad(*e.Quad)
		}
		rows = append(rows, []string{
			"`" + e.Input + "`",
			e.Outcome,
			e.Output,
			size,
			corners,
			e.Duration.Round(time.Millisecond).String(),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Input", "Outcome", "Output", "Size", "Corners", "Time"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, e := range r.Entries {
		if e.Error != "" {
			md.Details(e.Input, e.Error)
		}
	}
}
