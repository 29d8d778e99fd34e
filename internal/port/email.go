package port

import (
	"context"

	"walksocr/internal/domain"
)

// EmailSender defines the contract for operational notification emails.
type EmailSender interface {
	// SendReviewAlert notifies the operations inbox that a consolidated
	// profile carries fields flagged for manual review.
	SendReviewAlert(ctx context.Context, taskID string, profile *domain.ConsolidatedProfile) error
}
