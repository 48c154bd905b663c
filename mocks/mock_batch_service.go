package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"factura/internal/batch"
	"factura/internal/domain"
)

// MockBatchService is a mock implementation of batch.Service.
type MockBatchService struct {
	mock.Mock
}

func (m *MockBatchService) Process(ctx context.Context, docs []batch.Document, opts batch.Options) (*domain.BatchResult, error) {
	args := m.Called(ctx, docs, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResult), args.Error(1)
}
