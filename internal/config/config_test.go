package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/doc-scanner-mcp/internal/logging"
	"github.com/ironsheep/doc-scanner-mcp/internal/rectify"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, rectify.DefaultOptions(), cfg.PipelineOptions())
	assert.Equal(t, DefaultBackend, cfg.Backend)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, XDGDataDir(), cfg.DataDir)
	assert.NoError(t, cfg.Validate())

	colors, err := cfg.DebugColors()
	require.NoError(t, err)
	assert.Equal(t, rectify.DefaultDebugColors(), colors)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"backend", func(c *Config) { c.Backend = "cuda" }, ErrInvalidBackend},
		{"gocv backend", func(c *Config) { c.Backend = "gocv" }, nil},
		{"concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"data dir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"block size", func(c *Config) { c.AdaptiveThresholdBlockSize = 8 }, rectify.ErrInvalidBlockSize},
		{"canny", func(c *Config) { c.CannyLow = 300 }, rectify.ErrInvalidCanny},
		{"log level", func(c *Config) { c.LogLevel = "chatty" }, logging.ErrInvalidLevel},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, logging.ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	cfg := NewConfig()
	cfg.DebugQuadColor = "red"
	assert.Error(t, cfg.Validate())
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", `
min_area: 80000
canny_low: 30
debug: true
concurrency: 2
data_dir: /tmp/scans
`)

	cfg, used, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 80000.0, cfg.MinArea)
	assert.Equal(t, 30.0, cfg.CannyLow)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "/tmp/scans", cfg.DataDir)
	assert.Equal(t, rectify.DefaultCannyHigh, cfg.CannyHigh, "unset keys keep defaults")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, used, err := Load("", nil)
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, rectify.DefaultOptions(), cfg.PipelineOptions())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc-scanner.yaml", "min_area: 80000\nlog_level: warn\n")
	t.Setenv("DOC_SCANNER_MIN_AREA", "120000")
	t.Setenv("DOC_SCANNER_BACKEND", "gocv")

	cfg, _, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 120000.0, cfg.MinArea)
	assert.Equal(t, "gocv", cfg.Backend)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc-scanner.yaml", "morph_kernel_size: 7\nconcurrency: 3\n")
	t.Setenv("DOC_SCANNER_MORPH_KERNEL_SIZE", "9")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("morph-kernel-size", 5, "")
	flags.Int("concurrency", 4, "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--morph-kernel-size", "3", "--unrelated", "x"}))

	cfg, _, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MorphKernelSize)
	assert.Equal(t, 3, cfg.Concurrency, "unset flag must not shadow the file")
}

func TestLoad_InvalidValue(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc-scanner.yaml", "adaptive_threshold_block_size: 4\n")
	_, _, err := Load(path, nil)
	assert.ErrorIs(t, err, rectify.ErrInvalidBlockSize)
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	require.NoError(t, WriteTemplate(path, false))
	assert.ErrorIs(t, WriteTemplate(path, false), ErrConfigExists)
	require.NoError(t, WriteTemplate(path, true))

	cfg, used, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, NewConfig(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DOC_SCANNER_")
	assert.Contains(t, string(data), "min_area: 50000")
}
