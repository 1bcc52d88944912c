package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/ironsheep/doc-scanner-mcp/internal/logging"
	"github.com/ironsheep/doc-scanner-mcp/internal/rectify"
	"github.com/ironsheep/doc-scanner-mcp/internal/vision"
)

const (
	// AppName is the directory name used below the XDG base directories.
	AppName = "doc-scanner"

	// ConfigName is the configuration file name without extension.
	ConfigName = "doc-scanner"

	// EnvPrefix prefixes every environment variable the configuration
	// reads.
	EnvPrefix = "DOC_SCANNER"
)

// Defaults for the non-pipeline settings. Pipeline defaults live in the
// rectify package.
const (
	DefaultBackend      = vision.NameNative
	DefaultConcurrency  = 4
	DefaultLogLevel     = "info"
	DefaultLogFormat    = logging.FormatText
	DefaultContourColor = "#00FF00"
	DefaultQuadColor    = "#FF0000"
	DefaultUserID       = "local"
)

// Config is the flat application configuration. The mapstructure tags are
// the keys used in the YAML file, in environment variables (upper-cased,
// prefixed) and, with dashes for underscores, as flag names.
type Config struct {
	// Debug renders contour and selection overlays.
	Debug bool `mapstructure:"debug" yaml:"debug"`

	// MinArea is the area a document outline must exceed, in pixels.
	MinArea float64 `mapstructure:"min_area" yaml:"min_area"`

	// ApproxEpsilonRatio scales a contour perimeter into the polygon
	// simplification tolerance.
	ApproxEpsilonRatio float64 `mapstructure:"approx_epsilon_ratio" yaml:"approx_epsilon_ratio"`

	AdaptiveThresholdBlockSize int     `mapstructure:"adaptive_threshold_block_size" yaml:"adaptive_threshold_block_size"`
	AdaptiveThresholdC         float64 `mapstructure:"adaptive_threshold_c" yaml:"adaptive_threshold_c"`
	MorphKernelSize            int     `mapstructure:"morph_kernel_size" yaml:"morph_kernel_size"`
	CannyLow                   float64 `mapstructure:"canny_low" yaml:"canny_low"`
	CannyHigh                  float64 `mapstructure:"canny_high" yaml:"canny_high"`

	// Backend selects the vision backend: native or gocv.
	Backend string `mapstructure:"backend" yaml:"backend"`

	// DataDir is the root of the object store and the metadata database.
	// Defaults to $XDG_DATA_HOME/doc-scanner.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// Concurrency bounds how many files the CLI processes at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// DebugContourColor and DebugQuadColor are hex colours of the overlays.
	DebugContourColor string `mapstructure:"debug_contour_color" yaml:"debug_contour_color"`
	DebugQuadColor    string `mapstructure:"debug_quad_color" yaml:"debug_quad_color"`

	// UserID is recorded with uploads when no --user flag is given.
	UserID string `mapstructure:"user_id" yaml:"user_id"`
}

// NewConfig returns a Config holding the defaults.
func NewConfig() *Config {
	opts := rectify.DefaultOptions()
	return &Config{
		Debug:                      opts.Debug,
		MinArea:                    opts.MinArea,
		ApproxEpsilonRatio:         opts.ApproxEpsilonRatio,
		AdaptiveThresholdBlockSize: opts.AdaptiveThresholdBlockSize,
		AdaptiveThresholdC:         opts.AdaptiveThresholdC,
		MorphKernelSize:            opts.MorphKernelSize,
		CannyLow:                   opts.CannyLow,
		CannyHigh:                  opts.CannyHigh,
		Backend:                    DefaultBackend,
		DataDir:                    XDGDataDir(),
		Concurrency:                DefaultConcurrency,
		LogLevel:                   DefaultLogLevel,
		LogFormat:                  DefaultLogFormat,
		DebugContourColor:          DefaultContourColor,
		DebugQuadColor:             DefaultQuadColor,
		UserID:                     DefaultUserID,
	}
}

// XDGDataDir returns the default data directory,
// ~/.local/share/doc-scanner on Linux.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the directory searched for the configuration file,
// ~/.config/doc-scanner on Linux.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// PipelineOptions extracts the rectification options.
func (c *Config) PipelineOptions() rectify.Options {
	return rectify.Options{
		Debug:                      c.Debug,
		MinArea:                    c.MinArea,
		ApproxEpsilonRatio:         c.ApproxEpsilonRatio,
		AdaptiveThresholdBlockSize: c.AdaptiveThresholdBlockSize,
		AdaptiveThresholdC:         c.AdaptiveThresholdC,
		MorphKernelSize:            c.MorphKernelSize,
		CannyLow:                   c.CannyLow,
		CannyHigh:                  c.CannyHigh,
	}
}

// DebugColors parses the overlay colours.
func (c *Config) DebugColors() (rectify.DebugColors, error) {
	return rectify.ParseDebugColors(c.DebugContourColor, c.DebugQuadColor)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.PipelineOptions().Validate(); err != nil {
		return err
	}
	switch c.Backend {
	case vision.NameNative, vision.NameGoCV:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidBackend, c.Backend)
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.DataDir == "" {
		return ErrEmptyDataDir
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: %q", logging.ErrInvalidFormat, c.LogFormat)
	}
	if _, err := c.DebugColors(); err != nil {
		return err
	}
	return nil
}
