package service

import (
	"errors"

	"lanshare/internal/server/formdata"
	"lanshare/internal/server/storage"
)

// Sentinel errors for the service layer.
var (
	ErrInvalidName         = storage.ErrInvalidName
	ErrProtected           = storage.ErrProtected
	ErrNotFound            = storage.ErrNotFound
	ErrNotMultipart        = formdata.ErrNotMultipart
	ErrMissingBoundary     = formdata.ErrMissingBoundary
	ErrMalformedUpload     = errors.New("malformed multipart upload")
	ErrUploadTooLarge      = errors.New("upload exceeds maximum allowed size")
	ErrNoFilesUploaded     = errors.New("no files uploaded")
	ErrWriteFailed         = errors.New("can't create file")
	ErrDenied              = errors.New("delete request denied by admin")
	ErrApprovalInterrupted = errors.New("approval interrupted")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrFileMismatch        = errors.New("file mismatch")
	ErrDeleteFailed        = errors.New("failed to delete file")
)

// TokenError attaches the delete token a failure refers to, so callers can
// echo it back to the client.
type TokenError struct {
	Token string
	Err   error
}

func (e *TokenError) Error() string {
	return e.Err.Error() + " (token " + e.Token + ")"
}

func (e *TokenError) Unwrap() error {
	return e.Err
}
