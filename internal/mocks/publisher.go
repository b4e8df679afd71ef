package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-management/backend/internal/messaging"
)

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

var _ messaging.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
