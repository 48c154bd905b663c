package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"factura/internal/port"
)

// MockArchiveStore is a mock implementation of port.ArchiveStore.
type MockArchiveStore struct {
	mock.Mock
}

func (m *MockArchiveStore) Put(ctx context.Context, input port.ArchivePutInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}
