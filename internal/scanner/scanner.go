// Package scanner implements document upload: an uploaded file is
// rectified, the original and the cropped image are written to the object
// store, and the outcome is recorded in the metadata store.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ironsheep/doc-scanner-mcp/internal/imaging"
	"github.com/ironsheep/doc-scanner-mcp/internal/logging"
	"github.com/ironsheep/doc-scanner-mcp/internal/rectify"
	"github.com/ironsheep/doc-scanner-mcp/internal/store"
)

// ObjectStore stores encoded images under object keys.
type ObjectStore interface {
	Put(key string, data []byte) error
	Delete(key string) error
}

// MetadataStore records uploads.
type MetadataStore interface {
	Record(ctx context.Context, u *store.Upload) (int64, error)
}

// Result is a completed upload.
type Result struct {
	Upload   *store.Upload
	Artifact *rectify.Artifact
}

// Service runs uploads through the pipeline and persists them.
type Service struct {
	pipeline *rectify.Pipeline
	objects  ObjectStore
	meta     MetadataStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates an upload service. A nil logger discards output.
func NewService(pipeline *rectify.Pipeline, objects ObjectStore, meta MetadataStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		pipeline: pipeline,
		objects:  objects,
		meta:     meta,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Upload processes one file for userID.
//
// The original is stored under its own name, except that a PDF is stored
// as the PNG rendering of its first page. Whatever happens after the name
// is accepted, a metadata row is written: status done on success, or
// status failed with the error message, in which case the error is also
// returned.
func (s *Service) Upload(ctx context.Context, userID, filename string, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	originalName := filename
	if isPDF(data) {
		originalName = rectify.Stem(filename) + ".png"
	}
	originalKey, err := store.OriginalKey(originalName)
	if err != nil {
		return nil, fmt.Errorf("failed to accept upload: %w", err)
	}

	capture := imaging.ReadCaptureInfo(data)
	u := &store.Upload{
		UserID:      userID,
		Filename:    filename,
		OriginalKey: originalKey,
		Digest:      store.Digest(data),
		Camera:      capture.Camera,
		CapturedAt:  capture.CapturedAt,
		CreatedAt:   s.now(),
	}
	log := s.logger.With("user", userID, "file", filename)

	art, croppedKey, err := s.process(originalKey, filename, data)
	if err != nil {
		u.Status = store.StatusFailed
		u.Error = err.Error()
		if _, recErr := s.meta.Record(ctx, u); recErr != nil {
			log.Error("failed to record failed upload", "error", recErr)
			return nil, errors.Join(err, recErr)
		}
		log.Warn("upload failed", "id", u.ID, "error", err)
		return nil, err
	}

	u.CroppedKey = croppedKey
	u.Detected = art.Detected
	u.Width, u.Height = art.Width, art.Height
	u.Status = store.StatusDone
	if _, err := s.meta.Record(ctx, u); err != nil {
		return nil, err
	}

	if !art.Detected {
		log.Warn("no document boundary found, stored original", "id", u.ID)
	}
	log.Info("upload stored", "id", u.ID, "cropped", u.CroppedKey, "width", u.Width, "height", u.Height)
	return &Result{Upload: u, Artifact: art}, nil
}

// process decodes, rectifies and stores both images, returning the
// artifact and the key of the cropped object. Either both objects are
// stored or neither is.
func (s *Service) process(originalKey, filename string, data []byte) (*rectify.Artifact, string, error) {
	img, format, err := imaging.Decode(data)
	if err != nil {
		return nil, "", &rectify.InputDecodeError{Name: filename, Err: err}
	}

	original := data
	if format == imaging.FormatPDF {
		if original, err = imaging.EncodePNG(img); err != nil {
			return nil, "", fmt.Errorf("failed to encode rendered page: %w", err)
		}
	}

	res, err := s.pipeline.Run(img)
	if err != nil {
		return nil, "", err
	}
	art, err := s.pipeline.Export(res, filename)
	if err != nil {
		return nil, "", err
	}

	croppedKey, err := store.CroppedKey(art.Name)
	if err != nil {
		return nil, "", err
	}
	if err := s.objects.Put(originalKey, original); err != nil {
		return nil, "", err
	}
	if err := s.objects.Put(croppedKey, art.Data); err != nil {
		if delErr := s.objects.Delete(originalKey); delErr != nil {
			s.logger.Error("failed to remove original after storage failure",
				"key", originalKey, "error", delErr)
			return nil, "", errors.Join(err, delErr)
		}
		return nil, "", err
	}
	return art, croppedKey, nil
}

func isPDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
