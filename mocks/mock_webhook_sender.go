package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"walksocr/internal/domain"
)

// MockWebhookSender is a mock implementation of port.WebhookSender.
type MockWebhookSender struct {
	mock.Mock
}

func (m *MockWebhookSender) SendResult(ctx context.Context, url string, result *domain.TaskResult) error {
	args := m.Called(ctx, url, result)
	return args.Error(0)
}
