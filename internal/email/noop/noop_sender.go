package noop

import (
	"context"
	"log"
	"strings"

	"walksocr/internal/domain"
	"walksocr/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs review alerts to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendReviewAlert(_ context.Context, taskID string, profile *domain.ConsolidatedProfile) error {
	log.Printf("[NOOP EMAIL] Review alert for task %s: fields %s", taskID, strings.Join(profile.NeedsReview, ", "))
	return nil
}
