package ses

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"walksocr/internal/domain"
	"walksocr/internal/port"
)

type sesSender struct {
	client        *sesv2.Client
	fromAddress   string
	fromName      string
	reviewAddress string
}

// NewSESSender creates a new SES-backed EmailSender for review alerts.
func NewSESSender(region, fromAddress, fromName, reviewAddress string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:        client,
		fromAddress:   fromAddress,
		fromName:      fromName,
		reviewAddress: reviewAddress,
	}, nil
}

func (s *sesSender) SendReviewAlert(ctx context.Context, taskID string, profile *domain.ConsolidatedProfile) error {
	if s.reviewAddress == "" {
		return nil
	}

	subject := fmt.Sprintf("Onboarding %s: %d field(s) need manual review", taskID, len(profile.NeedsReview))
	htmlBody := buildReviewAlertHTML(taskID, profile)
	textBody := fmt.Sprintf(
		"Onboarding task %s finished with fields flagged for manual review:\n\n%s\n\nConfidence score: %.1f%% (%d of %d fields extracted)\n",
		taskID, strings.Join(profile.NeedsReview, "\n"),
		profile.ConfidenceScore, profile.FieldsExtracted, profile.FieldsTotal)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.reviewAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReviewAlertHTML(taskID string, profile *domain.ConsolidatedProfile) string {
	var items strings.Builder
	for _, field := range profile.NeedsReview {
		items.WriteString("<li>" + field + "</li>")
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Manual review required</h2>
  <p>Onboarding task <strong>%s</strong> finished with fields flagged for review:</p>
  <ul>%s</ul>
  <p>Confidence score: %.1f%% (%d of %d fields extracted)</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">WalksBank OCR - Merchant Onboarding</p>
</body>
</html>`, taskID, items.String(), profile.ConfidenceScore, profile.FieldsExtracted, profile.FieldsTotal)
}
