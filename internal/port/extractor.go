package port

import (
	"context"
	"encoding/json"
)

// ExtractInput carries the data needed to extract one staged document.
type ExtractInput struct {
	Doc      *StagedDoc
	Filename string
	Model    string
	APIKey   string
}

// Extractor abstracts the remote structured-extraction service. On success
// it returns the raw schema-shaped JSON payload; validation happens
// downstream. Errors carry a domain.DocumentFailure classifying the stage
// that failed (upload, inference, empty_response).
type Extractor interface {
	Extract(ctx context.Context, input ExtractInput) (json.RawMessage, error)
}
