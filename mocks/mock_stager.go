package mocks

import (
	"github.com/stretchr/testify/mock"

	"factura/internal/port"
)

// MockStager is a mock implementation of port.Stager.
type MockStager struct {
	mock.Mock
}

func (m *MockStager) Stage(data []byte, filename string) (*port.StagedDoc, error) {
	args := m.Called(data, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.StagedDoc), args.Error(1)
}

func (m *MockStager) Release(doc *port.StagedDoc) {
	m.Called(doc)
}
