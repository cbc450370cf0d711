package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-slot-booking/internal/application"
)

// MockNotificationGateway implements application.NotificationGateway for testing
type MockNotificationGateway struct {
	mock.Mock
}

func (m *MockNotificationGateway) Notify(ctx context.Context, n application.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
