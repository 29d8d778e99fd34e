// Package webhook delivers finished task results to caller-supplied URLs.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"walksocr/internal/domain"
	"walksocr/internal/port"
)

const userAgent = "WalksBank-OCR/1.0.0"

type sender struct {
	client     *http.Client
	maxRetries int
}

// NewSender creates an HTTP webhook sender. Deliveries that fail with a 5xx
// status or a transport error are re-attempted up to maxRetries times.
func NewSender(timeoutSecs, maxRetries int) port.WebhookSender {
	if timeoutSecs <= 0 {
		timeoutSecs = 30
	}
	return &sender{
		client:     &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second},
		maxRetries: maxRetries,
	}
}

func (s *sender) SendResult(ctx context.Context, url string, result *domain.TaskResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			log.Printf("webhook: retrying delivery to %s (attempt %d)", url, attempt+1)
		}

		lastErr = s.post(ctx, url, payload)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("webhook delivery failed after %d attempts: %w", s.maxRetries+1, lastErr)
}

func (s *sender) post(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	// Client errors are not retried: the receiver rejected the payload.
	if resp.StatusCode >= 500 {
		return fmt.Errorf("webhook receiver returned status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		log.Printf("webhook: receiver at %s rejected payload with status %d", url, resp.StatusCode)
	}
	return nil
}
