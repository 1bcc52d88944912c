// Package main is the entry point for the doc-scanner CLI and MCP server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/doc-scanner-mcp/internal/config"
	"github.com/ironsheep/doc-scanner-mcp/internal/logging"
	"github.com/ironsheep/doc-scanner-mcp/internal/rectify"
	"github.com/ironsheep/doc-scanner-mcp/internal/store"
	"github.com/ironsheep/doc-scanner-mcp/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "doc-scanner",
	Short: "Find, straighten and crop photographed documents",
	Long: `doc-scanner detects the outline of a paper document in a photo or scan,
corrects its perspective and writes an upright portrait PNG.

Run "doc-scanner serve" to expose the pipeline as MCP tools over stdio, or
use the rectify, upload and history subcommands directly.

Configuration is read from ./doc-scanner.yaml or
$XDG_CONFIG_HOME/doc-scanner/doc-scanner.yaml, then from DOC_SCANNER_*
environment variables, then from flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaults := config.NewConfig()
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./doc-scanner.yaml or $XDG_CONFIG_HOME/doc-scanner/doc-scanner.yaml)")
	pf.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	pf.String("log-format", defaults.LogFormat, "log format: text or json")
	pf.String("backend", defaults.Backend, "vision backend: native or gocv")
	pf.String("data-dir", defaults.DataDir, "directory holding uploads and the scan history")

	pf.Bool("debug", defaults.Debug, "render contour and selection overlays")
	pf.Float64("min-area", defaults.MinArea, "area in square pixels a document outline must exceed")
	pf.Float64("approx-epsilon-ratio", defaults.ApproxEpsilonRatio, "polygon simplification tolerance as a fraction of the perimeter")
	pf.Int("adaptive-threshold-block-size", defaults.AdaptiveThresholdBlockSize, "odd neighbourhood size of the adaptive threshold")
	pf.Float64("adaptive-threshold-c", defaults.AdaptiveThresholdC, "constant subtracted from the local mean")
	pf.Int("morph-kernel-size", defaults.MorphKernelSize, "side of the morphological closing element")
	pf.Float64("canny-low", defaults.CannyLow, "low Canny hysteresis threshold")
	pf.Float64("canny-high", defaults.CannyHigh, "high Canny hysteresis threshold")
	pf.String("debug-contour-color", defaults.DebugContourColor, "hex colour of traced contours in overlays")
	pf.String("debug-quad-color", defaults.DebugQuadColor, "hex colour of the selected outline in overlays")
}

// app bundles what the subcommands share once the configuration is loaded.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *rectify.Pipeline
}

// loadApp resolves the configuration for cmd and builds the logger and the
// pipeline. Logs go to stderr; stdout is reserved for command output and
// the MCP protocol.
func loadApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, used, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	if used != "" {
		logger.Debug("using config file", "path", used)
	}

	backend, err := vision.New(cfg.Backend)
	if err != nil {
		return nil, err
	}
	colors, err := cfg.DebugColors()
	if err != nil {
		return nil, err
	}
	p, err := rectify.New(backend, cfg.PipelineOptions(),
		rectify.WithLogger(logger),
		rectify.WithDebugColors(colors))
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, pipeline: p}, nil
}

// openStores opens the object store and the metadata database below the
// configured data directory.
func (a *app) openStores() (*store.FileStore, *store.MetadataDB, error) {
	files, err := store.NewFileStore(a.cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	meta, err := store.OpenMetadataDB(a.cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return files, meta, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
