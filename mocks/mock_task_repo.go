package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"walksocr/internal/domain"
)

// MockTaskRepo is a mock implementation of port.TaskRepository.
type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) Create(ctx context.Context, task *domain.OnboardingTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.OnboardingTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingTask), args.Error(1)
}

func (m *MockTaskRepo) ClaimQueued(ctx context.Context) (*domain.OnboardingTask, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingTask), args.Error(1)
}

func (m *MockTaskRepo) UpdateProgress(ctx context.Context, id uuid.UUID, progress int, currentDocument string) error {
	args := m.Called(ctx, id, progress, currentDocument)
	return args.Error(0)
}

func (m *MockTaskRepo) SaveResult(ctx context.Context, id uuid.UUID, status domain.TaskStatus, result []byte) error {
	args := m.Called(ctx, id, status, result)
	return args.Error(0)
}

func (m *MockTaskRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

func (m *MockTaskRepo) ListCompleted(ctx context.Context, limit int) ([]*domain.OnboardingTask, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OnboardingTask), args.Error(1)
}
