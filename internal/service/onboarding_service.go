package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"walksocr/internal/domain"
	"walksocr/internal/port"
)

// DocumentUpload is one base64-encoded document submitted for onboarding.
type DocumentUpload struct {
	Kind    domain.DocumentKind `json:"kind"`
	Content string              `json:"content"`
}

// CreateTaskInput is the DTO for submitting an onboarding task.
type CreateTaskInput struct {
	Documents  []DocumentUpload `json:"documents"`
	WebhookURL string           `json:"webhook_url"`
}

// OnboardingService stages uploaded documents and manages task lifecycle.
type OnboardingService interface {
	CreateTask(ctx context.Context, input *CreateTaskInput) (*domain.OnboardingTask, error)
	GetTask(ctx context.Context, id uuid.UUID) (*domain.OnboardingTask, error)
	ListCompleted(ctx context.Context, limit int) ([]*domain.OnboardingTask, error)
}

type onboardingService struct {
	taskRepo    port.TaskRepository
	storage     port.ObjectStorage
	bucket      string
	maxFileSize int64
}

// NewOnboardingService creates an OnboardingService implementation.
// maxFileSizeMB bounds each decoded upload.
func NewOnboardingService(taskRepo port.TaskRepository, storage port.ObjectStorage, bucket string, maxFileSizeMB int64) OnboardingService {
	return &onboardingService{
		taskRepo:    taskRepo,
		storage:     storage,
		bucket:      bucket,
		maxFileSize: maxFileSizeMB * 1024 * 1024,
	}
}

func (s *onboardingService) CreateTask(ctx context.Context, input *CreateTaskInput) (*domain.OnboardingTask, error) {
	if len(input.Documents) == 0 {
		return nil, domain.ErrNoDocuments
	}

	taskID := uuid.New()
	inputs := make([]domain.DocumentInput, 0, len(input.Documents))
	seen := make(map[domain.DocumentKind]bool, len(input.Documents))

	for _, upload := range input.Documents {
		if !domain.IsValidKind(upload.Kind) {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDocumentKind, upload.Kind)
		}
		// One document per kind: results are keyed by kind downstream.
		if seen[upload.Kind] {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateDocument, upload.Kind)
		}
		seen[upload.Kind] = true

		data, err := base64.StdEncoding.DecodeString(upload.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: document %s", domain.ErrInvalidBase64, upload.Kind)
		}
		if int64(len(data)) > s.maxFileSize {
			return nil, fmt.Errorf("%w: document %s (%d bytes)", domain.ErrFileTooLarge, upload.Kind, len(data))
		}

		fileType, contentType, ok := domain.DetectFileType(data)
		if !ok {
			return nil, fmt.Errorf("%w: document %s", domain.ErrUnsupportedFileType, upload.Kind)
		}

		key := fmt.Sprintf("tasks/%s/%s.%s", taskID, upload.Kind, fileType)
		_, err = s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.bucket,
			Key:         key,
			Body:        bytes.NewReader(data),
			ContentType: contentType,
			Size:        int64(len(data)),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: document %s: %v", domain.ErrUploadFailed, upload.Kind, err)
		}

		inputs = append(inputs, domain.DocumentInput{
			Kind:        upload.Kind,
			StorageKey:  key,
			ContentType: contentType,
			Size:        int64(len(data)),
		})
	}

	docsJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("marshaling document inputs: %w", err)
	}

	now := time.Now().UTC()
	task := &domain.OnboardingTask{
		ID:         taskID,
		Status:     domain.TaskStatusQueued,
		Documents:  docsJSON,
		WebhookURL: input.WebhookURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("creating onboarding task: %w", err)
	}

	log.Printf("onboardingService: task %s queued with %d documents", taskID, len(inputs))
	return task, nil
}

func (s *onboardingService) GetTask(ctx context.Context, id uuid.UUID) (*domain.OnboardingTask, error) {
	return s.taskRepo.GetByID(ctx, id)
}

func (s *onboardingService) ListCompleted(ctx context.Context, limit int) ([]*domain.OnboardingTask, error) {
	return s.taskRepo.ListCompleted(ctx, limit)
}
