package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"walksocr/internal/domain"
	"walksocr/internal/port"
)

// TaskQueueConfig holds settings for the onboarding task queue worker.
type TaskQueueConfig struct {
	PollInterval      time.Duration
	Concurrency       int
	Bucket            string
	PresignExpirySecs int64
}

// TaskQueueWorker polls for queued onboarding tasks and runs the document
// pipeline for each.
type TaskQueueWorker struct {
	taskRepo   port.TaskRepository
	docService DocumentService
	storage    port.ObjectStorage
	webhook    port.WebhookSender
	email      port.EmailSender
	cfg        TaskQueueConfig
	wg         sync.WaitGroup
}

// NewTaskQueueWorker creates a new TaskQueueWorker. webhook and email may be
// nil when those notifications are disabled.
func NewTaskQueueWorker(
	taskRepo port.TaskRepository,
	docService DocumentService,
	storage port.ObjectStorage,
	webhook port.WebhookSender,
	email port.EmailSender,
	cfg TaskQueueConfig,
) *TaskQueueWorker {
	return &TaskQueueWorker{
		taskRepo:   taskRepo,
		docService: docService,
		storage:    storage,
		webhook:    webhook,
		email:      email,
		cfg:        cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight tasks have finished.
func (w *TaskQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("taskQueueWorker: started (poll=%s, concurrency=%d)", w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("taskQueueWorker: shutting down, waiting for in-flight tasks...")
			w.wg.Wait()
			log.Printf("taskQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			if len(sem) >= w.cfg.Concurrency {
				continue
			}

			task, err := w.taskRepo.ClaimQueued(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("taskQueueWorker: ClaimQueued error: %v", err)
				continue
			}
			if task == nil {
				continue
			}

			sem <- struct{}{} // acquire
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				defer func() { <-sem }() // release

				// Fresh context independent of the poll context so in-flight
				// tasks complete even during shutdown.
				taskCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
				defer cancel()

				log.Printf("taskQueueWorker: dispatching task %s (attempt %d)", task.ID, task.Attempts+1)
				w.runTask(taskCtx, task)
			}()
		}
	}
}

func (w *TaskQueueWorker) runTask(ctx context.Context, task *domain.OnboardingTask) {
	inputs, err := task.Inputs()
	if err != nil {
		log.Printf("taskQueueWorker: task %s has malformed documents: %v", task.ID, err)
		_ = w.taskRepo.MarkFailed(ctx, task.ID, "malformed document references: "+err.Error())
		return
	}

	progress := func(done, total int, current domain.DocumentKind) {
		pct := done * 100 / total
		label := fmt.Sprintf("document %d of %d", done, total)
		if err := w.taskRepo.UpdateProgress(ctx, task.ID, pct, label); err != nil {
			log.Printf("taskQueueWorker: task %s progress update failed: %v", task.ID, err)
		}
	}

	result, err := w.docService.ProcessBatch(ctx, task.ID, inputs, progress)
	if err != nil {
		log.Printf("taskQueueWorker: task %s failed: %v", task.ID, err)
		_ = w.taskRepo.MarkFailed(ctx, task.ID, err.Error())
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		log.Printf("taskQueueWorker: task %s result marshal failed: %v", task.ID, err)
		_ = w.taskRepo.MarkFailed(ctx, task.ID, "marshaling result: "+err.Error())
		return
	}

	status := domain.TaskStatusSuccess
	if !result.Success {
		status = domain.TaskStatusFailure
	}
	if err := w.taskRepo.SaveResult(ctx, task.ID, status, resultJSON); err != nil {
		log.Printf("taskQueueWorker: task %s result save failed: %v", task.ID, err)
		return
	}
	log.Printf("taskQueueWorker: task %s finished (%d/%d documents ok)",
		task.ID, result.SuccessfulDocuments, result.TotalDocuments)

	w.cleanupStaged(ctx, task.ID, inputs)

	if w.webhook != nil && task.WebhookURL != "" {
		w.attachFacadeURL(ctx, result)
		if err := w.webhook.SendResult(ctx, task.WebhookURL, result); err != nil {
			log.Printf("taskQueueWorker: task %s webhook delivery failed: %v", task.ID, err)
		}
	}

	if w.email != nil && result.Consolidated != nil && len(result.Consolidated.NeedsReview) > 0 {
		if err := w.email.SendReviewAlert(ctx, task.ID.String(), result.Consolidated); err != nil {
			log.Printf("taskQueueWorker: task %s review alert failed: %v", task.ID, err)
		}
	}
}

// cleanupStaged deletes processed document images from object storage. The
// facade photo stays stored so its presigned link keeps working for the
// webhook receiver.
func (w *TaskQueueWorker) cleanupStaged(ctx context.Context, taskID uuid.UUID, inputs []domain.DocumentInput) {
	if w.storage == nil {
		return
	}
	for _, input := range inputs {
		if input.Kind == domain.KindFacade {
			continue
		}
		if err := w.storage.Delete(ctx, w.cfg.Bucket, input.StorageKey); err != nil {
			log.Printf("taskQueueWorker: task %s cleanup of %s failed: %v", taskID, input.StorageKey, err)
		}
	}
}

// attachFacadeURL adds a presigned download link for the stored facade photo
// to the outgoing webhook payload. Runs after the result is persisted so the
// short-lived URL never reaches the database.
func (w *TaskQueueWorker) attachFacadeURL(ctx context.Context, result *domain.TaskResult) {
	if w.storage == nil || result.Consolidated == nil {
		return
	}
	info := result.Consolidated.FacadeInfo
	if info == nil || info.StorageKey == "" {
		return
	}
	url, err := w.storage.GetPresignedURL(ctx, w.cfg.Bucket, info.StorageKey, w.cfg.PresignExpirySecs)
	if err != nil {
		log.Printf("taskQueueWorker: presigning facade photo %s failed: %v", info.StorageKey, err)
		return
	}
	info.PhotoURL = url
}
