package port

import (
	"context"
	"io"
)

// ArchivePutInput encapsulates the parameters needed to archive an object.
type ArchivePutInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// ArchiveStore abstracts long-term storage of uploaded documents.
// Archival is best-effort: callers log failures and continue.
type ArchiveStore interface {
	Put(ctx context.Context, input ArchivePutInput) (location string, err error)
}
