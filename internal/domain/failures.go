package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies what went wrong for a single document.
type FailureKind string

const (
	// FailureStaging means the uploaded bytes could not be persisted locally.
	FailureStaging FailureKind = "staging"
	// FailureUpload means the document could not be handed to the remote service.
	FailureUpload FailureKind = "upload"
	// FailureInference means the remote model call errored or timed out.
	FailureInference FailureKind = "inference"
	// FailureEmptyResponse means the remote call returned no usable content.
	FailureEmptyResponse FailureKind = "empty_response"
	// FailureValidation means the response did not conform to the invoice shape.
	FailureValidation FailureKind = "validation"
	// FailureCleanup means best-effort remote deletion failed. It is logged
	// only and never recorded against a document's outcome.
	FailureCleanup FailureKind = "cleanup"
)

// DocumentFailure is the per-document failure recorded in a batch result.
// It implements error so pipeline stages can return it directly.
type DocumentFailure struct {
	Filename string      `json:"filename"`
	Kind     FailureKind `json:"kind"`
	Cause    string      `json:"cause"`
}

func (f *DocumentFailure) Error() string {
	return fmt.Sprintf("%s: %s failure: %s", f.Filename, f.Kind, f.Cause)
}

// NewDocumentFailure builds a DocumentFailure for the given document.
func NewDocumentFailure(filename string, kind FailureKind, err error) *DocumentFailure {
	return &DocumentFailure{Filename: filename, Kind: kind, Cause: err.Error()}
}

// AsDocumentFailure classifies an arbitrary pipeline error for filename.
// Errors that already carry a DocumentFailure keep their kind; anything
// else is treated as an inference failure.
func AsDocumentFailure(filename string, err error) *DocumentFailure {
	var df *DocumentFailure
	if errors.As(err, &df) {
		return &DocumentFailure{Filename: filename, Kind: df.Kind, Cause: df.Cause}
	}
	return NewDocumentFailure(filename, FailureInference, err)
}
