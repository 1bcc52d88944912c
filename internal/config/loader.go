package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name searched for when no path is
// given.
const FileName = ConfigName + ".yaml"

// Load resolves the configuration from defaults, the configuration file,
// the environment and flags, and validates the result.
//
// path names the configuration file explicitly; when empty the working
// directory and XDGConfigDir are searched and a missing file is not an
// error. flags may be nil; only flags the user actually set override
// other sources. It returns the configuration and the file that was read,
// if any.
func Load(path string, flags *pflag.FlagSet) (*Config, string, error) {
	v := viper.New()
	setDefaults(v, NewConfig())

	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(XDGConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, "", err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

// setDefaults registers every key with its default so that environment
// variables are picked up for keys absent from the file.
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range fields(cfg) {
		v.SetDefault(key, value)
	}
}

// bindFlags binds each changed flag whose name matches a configuration key,
// dashes standing for underscores.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	known := fields(NewConfig())
	var err error
	flags.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if _, ok := known[key]; !ok || err != nil {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = fmt.Errorf("failed to bind flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

// fields maps configuration keys to the values held by cfg.
func fields(cfg *Config) map[string]any {
	return map[string]any{
		"debug":                         cfg.Debug,
		"min_area":                      cfg.MinArea,
		"approx_epsilon_ratio":          cfg.ApproxEpsilonRatio,
		"adaptive_threshold_block_size": cfg.AdaptiveThresholdBlockSize,
		"adaptive_threshold_c":          cfg.AdaptiveThresholdC,
		"morph_kernel_size":             cfg.MorphKernelSize,
		"canny_low":                     cfg.CannyLow,
		"canny_high":                    cfg.CannyHigh,
		"backend":                       cfg.Backend,
		"data_dir":                      cfg.DataDir,
		"concurrency":                   cfg.Concurrency,
		"log_level":                     cfg.LogLevel,
		"log_format":                    cfg.LogFormat,
		"debug_contour_color":           cfg.DebugContourColor,
		"debug_quad_color":              cfg.DebugQuadColor,
		"user_id":                       cfg.UserID,
	}
}

const templateHeader = `# doc-scanner configuration.
#
# Every key can also be set through the environment with the DOC_SCANNER_
# prefix (for example DOC_SCANNER_MIN_AREA=80000) or with the matching
# command-line flag (--min-area 80000).

`

// WriteTemplate writes the default configuration as YAML to path, creating
// parent directories. An existing file is only replaced when force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	body, err := yaml.Marshal(NewConfig())
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append([]byte(templateHeader), body...), 0o600); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return nil
}

// DefaultTemplatePath is where init writes when no output is given.
func DefaultTemplatePath() string {
	return filepath.Join(XDGConfigDir(), FileName)
}
