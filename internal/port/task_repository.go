package port

import (
	"context"

	"github.com/google/uuid"

	"walksocr/internal/domain"
)

// TaskRepository persists onboarding tasks and their results.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.OnboardingTask) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OnboardingTask, error)
	// ClaimQueued atomically claims the oldest queued task, moving it to
	// processing. Returns nil when the queue is empty.
	ClaimQueued(ctx context.Context) (*domain.OnboardingTask, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int, currentDocument string) error
	SaveResult(ctx context.Context, id uuid.UUID, status domain.TaskStatus, result []byte) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	ListCompleted(ctx context.Context, limit int) ([]*domain.OnboardingTask, error)
}
