package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"walksocr/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendReviewAlert(ctx context.Context, taskID string, profile *domain.ConsolidatedProfile) error {
	args := m.Called(ctx, taskID, profile)
	return args.Error(0)
}
