package rectify

import (
	"errors"
	"fmt"
)

// Default option values.
const (
	DefaultMinArea                    = 50000.0
	DefaultApproxEpsilonRatio         = 0.02
	DefaultAdaptiveThresholdBlockSize = 11
	DefaultAdaptiveThresholdC         = 2.0
	DefaultMorphKernelSize            = 5
	DefaultCannyLow                   = 50.0
	DefaultCannyHigh                  = 150.0
)

// Option validation errors.
var (
	ErrInvalidBlockSize  = errors.New("adaptive threshold block size must be odd and at least 3")
	ErrInvalidKernelSize = errors.New("morphology kernel size must be at least 1")
	ErrInvalidEpsilon    = errors.New("approximation epsilon ratio must be positive")
	ErrInvalidMinArea    = errors.New("minimum area must not be negative")
	ErrInvalidCanny      = errors.New("canny thresholds must satisfy 0 <= low <= high")
)

// Options tunes a pipeline run.
type Options struct {
	// Debug enables the contour and selection overlays.
	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`

	// MinArea is the area in square pixels a quadrilateral must strictly
	// exceed to be accepted.
	MinArea float64 `json:"min_area" yaml:"min_area" mapstructure:"min_area"`

	// ApproxEpsilonRatio scales a contour's perimeter into the
	// Douglas-Peucker tolerance.
	ApproxEpsilonRatio float64 `json:"approx_epsilon_ratio" yaml:"approx_epsilon_ratio" mapstructure:"approx_epsilon_ratio"`

	// AdaptiveThresholdBlockSize is the side of the thresholding
	// neighbourhood.
	AdaptiveThresholdBlockSize int `json:"adaptive_threshold_block_size" yaml:"adaptive_threshold_block_size" mapstructure:"adaptive_threshold_block_size"`

	// AdaptiveThresholdC is subtracted from the local mean.
	AdaptiveThresholdC float64 `json:"adaptive_threshold_c" yaml:"adaptive_threshold_c" mapstructure:"adaptive_threshold_c"`

	// MorphKernelSize is the side of the closing element.
	MorphKernelSize int `json:"morph_kernel_size" yaml:"morph_kernel_size" mapstructure:"morph_kernel_size"`

	// CannyLow and CannyHigh are the hysteresis thresholds.
	CannyLow  float64 `json:"canny_low" yaml:"canny_low" mapstructure:"canny_low"`
	CannyHigh float64 `json:"canny_high" yaml:"canny_high" mapstructure:"canny_high"`
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		MinArea:                    DefaultMinArea,
		ApproxEpsilonRatio:         DefaultApproxEpsilonRatio,
		AdaptiveThresholdBlockSize: DefaultAdaptiveThresholdBlockSize,
		AdaptiveThresholdC:         DefaultAdaptiveThresholdC,
		MorphKernelSize:            DefaultMorphKernelSize,
		CannyLow:                   DefaultCannyLow,
		CannyHigh:                  DefaultCannyHigh,
	}
}

// Validate checks the options for values no stage can work with.
func (o Options) Validate() error {
	if o.AdaptiveThresholdBlockSize < 3 || o.AdaptiveThresholdBlockSize%2 == 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBlockSize, o.AdaptiveThresholdBlockSize)
	}
	if o.MorphKernelSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidKernelSize, o.MorphKernelSize)
	}
	if !(o.ApproxEpsilonRatio > 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidEpsilon, o.ApproxEpsilonRatio)
	}
	if o.MinArea < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidMinArea, o.MinArea)
	}
	if o.CannyLow < 0 || o.CannyLow > o.CannyHigh {
		return fmt.Errorf("%w: got low=%v high=%v", ErrInvalidCanny, o.CannyLow, o.CannyHigh)
	}
	return nil
}
