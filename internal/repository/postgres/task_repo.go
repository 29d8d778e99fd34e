package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"walksocr/internal/domain"
	"walksocr/internal/port"
)

type taskRepo struct {
	db *sqlx.DB
}

// NewTaskRepo creates a new PostgreSQL-backed TaskRepository.
func NewTaskRepo(db *sqlx.DB) port.TaskRepository {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, task *domain.OnboardingTask) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `INSERT INTO onboarding_tasks (
		id, status, progress, current_document, documents,
		result, error, attempts, webhook_url, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10, $11
	)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Status, task.Progress, task.CurrentDocument, task.Documents,
		task.Result, task.Error, task.Attempts, task.WebhookURL, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}
	return nil
}

func (r *taskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.OnboardingTask, error) {
	var task domain.OnboardingTask
	err := r.db.GetContext(ctx, &task,
		"SELECT * FROM onboarding_tasks WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}
	return &task, nil
}

// ClaimQueued atomically moves the oldest queued task to processing.
// SKIP LOCKED keeps concurrent workers from claiming the same row.
func (r *taskRepo) ClaimQueued(ctx context.Context) (*domain.OnboardingTask, error) {
	query := `UPDATE onboarding_tasks SET
		status = $1, attempts = attempts + 1, updated_at = $2
	 WHERE id = (
		SELECT id FROM onboarding_tasks
		WHERE status = $3
		ORDER BY created_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	 )
	 RETURNING *`

	var task domain.OnboardingTask
	err := r.db.GetContext(ctx, &task, query,
		domain.TaskStatusProcessing, time.Now().UTC(), domain.TaskStatusQueued)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("taskRepo.ClaimQueued: %w", err)
	}
	return &task, nil
}

func (r *taskRepo) UpdateProgress(ctx context.Context, id uuid.UUID, progress int, currentDocument string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE onboarding_tasks SET progress = $1, current_document = $2, updated_at = $3
		 WHERE id = $4`,
		progress, currentDocument, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("taskRepo.UpdateProgress: %w", err)
	}
	return ensureRowAffected(result, "taskRepo.UpdateProgress")
}

func (r *taskRepo) SaveResult(ctx context.Context, id uuid.UUID, status domain.TaskStatus, resultJSON []byte) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE onboarding_tasks SET
			status = $1, result = $2, progress = 100, current_document = '', updated_at = $3
		 WHERE id = $4`,
		status, resultJSON, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("taskRepo.SaveResult: %w", err)
	}
	return ensureRowAffected(result, "taskRepo.SaveResult")
}

func (r *taskRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE onboarding_tasks SET status = $1, error = $2, updated_at = $3
		 WHERE id = $4`,
		domain.TaskStatusFailure, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("taskRepo.MarkFailed: %w", err)
	}
	return ensureRowAffected(result, "taskRepo.MarkFailed")
}

func (r *taskRepo) ListCompleted(ctx context.Context, limit int) ([]*domain.OnboardingTask, error) {
	var tasks []*domain.OnboardingTask
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT * FROM onboarding_tasks
		 WHERE status IN ($1, $2)
		 ORDER BY updated_at DESC LIMIT $3`,
		domain.TaskStatusSuccess, domain.TaskStatusFailure, limit)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListCompleted: %w", err)
	}
	return tasks, nil
}

func ensureRowAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
