package port

import (
	"context"

	"walksocr/internal/domain"
)

// WebhookSender notifies a caller-supplied URL when a task reaches a terminal
// state.
type WebhookSender interface {
	SendResult(ctx context.Context, url string, result *domain.TaskResult) error
}
