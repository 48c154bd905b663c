package domain

import "errors"

var (
	ErrNoFiles             = errors.New("no files provided")
	ErrMissingAPIKey       = errors.New("missing API key")
	ErrBatchTooLarge       = errors.New("too many files in batch")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
)
