package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/doc-scanner-mcp/internal/rectify"
	"github.com/ironsheep/doc-scanner-mcp/internal/report"
)

var rectifyCmd = &cobra.Command{
	Use:   "rectify FILE...",
	Short: "Crop and straighten documents into <name>.cropped.png",
	Long: `rectify runs each input through the detection pipeline and writes
<name>.cropped.png to the output directory. Inputs without a detectable
document are written unchanged. PDF inputs use their first page.

With --debug the contour and selection overlays are written next to the
output as <name>.contours.png and <name>.selection.png.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRectify,
}

func init() {
	rectifyCmd.Flags().StringP("output-dir", "o", "", "directory to write results to (default: next to each input)")
	rectifyCmd.Flags().String("report", "", "write a run report to this file (.md for Markdown, JSON otherwise)")
	rectifyCmd.Flags().IntP("concurrency", "j", 0, "files processed at once (default from config, 4)")

	rootCmd.AddCommand(rectifyCmd)
}

func runRectify(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("output-dir")
	reportPath, _ := cmd.Flags().GetString("report")

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	entries := make([]report.Entry, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(a.cfg.Concurrency)
	for i, input := range args {
		g.Go(func() error {
			entries[i] = a.rectifyFile(ctx, input, outDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rep := &report.Report{
		GeneratedAt: time.Now(),
		Version:     Version,
		Backend:     a.pipeline.Backend().Name(),
		Options:     a.pipeline.Options(),
		Entries:     entries,
	}
	if reportPath != "" {
		if err := writeReport(rep, reportPath); err != nil {
			return err
		}
	}

	failed := rep.Count(report.OutcomeFailed)
	fmt.Fprintf(cmd.OutOrStdout(), "%d cropped, %d passed through, %d failed\n",
		rep.Count(report.OutcomeCropped), rep.Count(report.OutcomePassThrough), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
	}
	return nil
}

// rectifyFile processes one input and writes its outputs. Failures are
// logged and reported in the entry.
func (a *app) rectifyFile(ctx context.Context, input, outDir string) report.Entry {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return report.NewEntry(input, "", nil, err, 0)
	}

	art, output, err := a.rectifyAndWrite(input, outDir)
	elapsed := time.Since(start)
	if err != nil {
		a.logger.Error("rectify failed", "input", input, "error", err)
		return report.NewEntry(input, "", nil, err, elapsed)
	}
	if !art.Detected {
		a.logger.Warn("no document found, wrote input unchanged", "input", input, "output", output)
	}
	a.logger.Info("rectified",
		"input", input,
		"output", output,
		"detected", art.Detected,
		"rotated", art.Rotated,
		"elapsed", elapsed)
	return report.NewEntry(input, output, art, nil, elapsed)
}

func (a *app) rectifyAndWrite(input, outDir string) (*rectify.Artifact, string, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, "", &rectify.InputDecodeError{Name: input, Err: err}
	}
	art, err := a.pipeline.Process(input, data)
	if err != nil {
		return nil, "", err
	}

	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	output := filepath.Join(outDir, art.Name)
	if err := os.WriteFile(output, art.Data, 0o600); err != nil {
		return nil, "", fmt.Errorf("failed to write %s: %w", output, err)
	}
	names := rectify.DebugNames(input)
	for i, overlay := range art.Debug {
		path := filepath.Join(outDir, names[i])
		if err := os.WriteFile(path, overlay, 0o600); err != nil {
			a.logger.Warn("failed to write debug overlay", "path", path, "error", err)
		}
	}
	return art, output, nil
}

func writeReport(rep *report.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	w, err := report.NewWriter(report.FormatForPath(path), f)
	if err != nil {
		return err
	}
	if _, err := w.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
