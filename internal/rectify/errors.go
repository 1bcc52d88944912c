package rectify

import (
	"errors"
	"fmt"
)

var (
	// ErrInputDecode matches errors for input that cannot be decoded into
	// a raster image.
	ErrInputDecode = errors.New("input decode error")

	// ErrProcessing matches errors raised while processing a decoded image.
	ErrProcessing = errors.New("processing error")
)

// Stage names reported by ProcessingError.
const (
	StagePreprocess = "preprocess"
	StageEdges      = "edges"
	StageContours   = "contours"
	StageRectify    = "rectify"
	StageExport     = "export"
)

// InputDecodeError reports input bytes that are empty, of an unsupported
// format, or corrupt.
type InputDecodeError struct {
	Name string
	Err  error
}

func (e *InputDecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("failed to decode input: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode %s: %v", e.Name, e.Err)
}

func (e *InputDecodeError) Unwrap() error { return e.Err }

func (e *InputDecodeError) Is(target error) bool { return target == ErrInputDecode }

// ProcessingError reports a failure inside a pipeline stage.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

func (e *ProcessingError) Is(target error) bool { return target == ErrProcessing }

func processingError(stage string, err error) error {
	return &ProcessingError{Stage: stage, Err: err}
}
