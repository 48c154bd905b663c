package noop

import (
	"context"

	"factura/internal/port"
)

type noopStore struct{}

// NewNoopStore returns an ArchiveStore that discards everything. Used when
// archival is disabled.
func NewNoopStore() port.ArchiveStore {
	return &noopStore{}
}

func (n *noopStore) Put(_ context.Context, _ port.ArchivePutInput) (string, error) {
	return "", nil
}
