package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"lanshare/internal/server/config"
	"lanshare/internal/server/formdata"
	"lanshare/internal/server/storage"
)

// StoredFile is returned for every file part that reached the disk.
type StoredFile struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Digest string `json:"blake2b"`
}

// FailedFile records a file part that was rejected or could not be written.
type FailedFile struct {
	Name string
	Err  error
}

// UploadResult lists stored files in request order, plus the parts that
// were skipped.
type UploadResult struct {
	Stored []StoredFile
	Failed []FailedFile
}

// Names returns the stored filenames in request order.
func (r *UploadResult) Names() []string {
	names := make([]string, 0, len(r.Stored))
	for _, f := range r.Stored {
		names = append(names, f.Name)
	}
	return names
}

// UploadService persists multipart uploads into the shared directory.
type UploadService struct {
	store   storage.Store
	maxSize int64
}

// NewUploadService creates a new upload service.
func NewUploadService(store storage.Store, cfg *config.Config) *UploadService {
	return &UploadService{
		store:   store,
		maxSize: cfg.MaxUploadSize,
	}
}

// Upload handles a multipart/form-data request body.
//
// A part that fails does not abort the batch: it is logged, recorded in
// Failed, and the remaining parts are still processed. The call fails with
// ErrNoFilesUploaded only when nothing was stored.
func (s *UploadService) Upload(ctx context.Context, contentType string, contentLength int64, body io.Reader) (*UploadResult, error) {
	boundary, err := formdata.Boundary(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedUpload, err)
	}

	// Reject on the declared length before touching the body.
	if s.maxSize > 0 && contentLength > s.maxSize {
		return nil, ErrUploadTooLarge
	}

	r := body
	if s.maxSize > 0 {
		r = io.LimitReader(body, s.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, ErrUploadTooLarge
	}

	result := &UploadResult{}
	for _, part := range formdata.FileParts(formdata.Parse(data, boundary)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stored, err := s.Store(part.Filename, part.Body)
		if err != nil {
			slog.Warn("upload part rejected", "filename", part.Filename, "error", err)
			result.Failed = append(result.Failed, FailedFile{Name: part.Filename, Err: err})
			continue
		}
		result.Stored = append(result.Stored, *stored)
	}

	if len(result.Stored) == 0 {
		if n := len(result.Failed); n > 0 {
			return result, fmt.Errorf("%w: %w", ErrNoFilesUploaded, result.Failed[n-1].Err)
		}
		return result, ErrNoFilesUploaded
	}
	return result, nil
}

// Store writes one file atomically under its sanitized basename.
func (s *UploadService) Store(name string, data []byte) (*StoredFile, error) {
	saved, err := s.store.Save(name, bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, ErrProtected) || errors.Is(err, ErrInvalidName) {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrWriteFailed, name, err)
	}

	slog.Info("upload stored",
		"filename", saved.Name,
		"size", saved.Size,
		"blake2b", saved.Digest,
	)

	return &StoredFile{
		Name:   saved.Name,
		Size:   saved.Size,
		Digest: saved.Digest,
	}, nil
}
