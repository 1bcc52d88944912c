package imaging

import (
	"strings"
	"time"

	exif "github.com/dsoprea/go-exif/v3"
)

// exifTimeLayout is the timestamp layout of the EXIF DateTime tags.
const exifTimeLayout = "2006:01:02 15:04:05"

// CaptureInfo describes the device and moment a photograph was taken, as
// recorded in its EXIF metadata.
type CaptureInfo struct {
	// Camera is "<Make> <Model>", or whichever of the two is present.
	Camera string `json:"camera,omitempty"`

	// CapturedAt is DateTimeOriginal (or DateTime) in the camera's local
	// time. Zero when absent or unparsable.
	CapturedAt time.Time `json:"captured_at,omitzero"`
}

// ReadCaptureInfo extracts capture metadata from encoded image bytes.
// Inputs without EXIF data, including PNG and PDF files, return a zero
// CaptureInfo; missing metadata is never an error.
func ReadCaptureInfo(data []byte) CaptureInfo {
	var info CaptureInfo

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return info
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return info
	}

	var cameraMake, cameraModel, original, modified string
	for _, entry := range entries {
		value := strings.TrimSpace(strings.Trim(entry.Formatted, "\x00"))
		switch entry.TagName {
		case "Make":
			cameraMake = value
		case "Model":
			cameraModel = value
		case "DateTimeOriginal":
			original = value
		case "DateTime":
			modified = value
		}
	}

	switch {
	case cameraMake != "" && cameraModel != "" && !strings.HasPrefix(cameraModel, cameraMake):
		info.Camera = cameraMake + " " + cameraModel
	case cameraModel != "":
		info.Camera = cameraModel
	default:
		info.Camera = cameraMake
	}

	stamp := original
	if stamp == "" {
		stamp = modified
	}
	if t, err := time.Parse(exifTimeLayout, stamp); err == nil {
		info.CapturedAt = t
	}
	return info
}
