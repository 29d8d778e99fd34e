package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"walksocr/internal/consolidate"
	"walksocr/internal/domain"
	"walksocr/internal/extract"
	"walksocr/internal/ocr"
	"walksocr/internal/port"
	"walksocr/internal/quality"
	"walksocr/internal/retry"
	"walksocr/internal/schema"
)

// ProgressFunc reports batch progress after each document reaches a terminal
// state. done counts finished documents, current names the one that finished.
type ProgressFunc func(done, total int, current domain.DocumentKind)

// DocumentService runs the extraction pipeline for onboarding documents.
type DocumentService interface {
	// ProcessDocument runs the full pipeline for one staged document,
	// including retries, and returns its terminal DocumentResult. The error
	// return is non-nil only when the document was abandoned (context
	// canceled) and must not be consolidated.
	ProcessDocument(ctx context.Context, input domain.DocumentInput) (*domain.DocumentResult, error)

	// ProcessBatch processes every staged document of one task concurrently
	// and consolidates the outcomes into a TaskResult.
	ProcessBatch(ctx context.Context, taskID uuid.UUID, inputs []domain.DocumentInput, progress ProgressFunc) (*domain.TaskResult, error)
}

type documentService struct {
	storage    port.ObjectStorage
	extractor  port.TextExtractor
	parser     *extract.Parser
	registry   *schema.Registry
	controller *retry.Controller
	bucket     string
}

// NewDocumentService creates a DocumentService implementation.
func NewDocumentService(
	storage port.ObjectStorage,
	extractor port.TextExtractor,
	registry *schema.Registry,
	controller *retry.Controller,
	bucket string,
) DocumentService {
	return &documentService{
		storage:    storage,
		extractor:  extractor,
		parser:     extract.NewParser(registry),
		registry:   registry,
		controller: controller,
		bucket:     bucket,
	}
}

func (s *documentService) ProcessDocument(ctx context.Context, input domain.DocumentInput) (*domain.DocumentResult, error) {
	imageBytes, err := s.storage.Download(ctx, s.bucket, input.StorageKey)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &domain.DocumentResult{
			Kind:        input.Kind,
			Success:     false,
			Error:       "downloading staged document: " + err.Error(),
			Attempts:    1,
			ProcessedAt: time.Now().UTC(),
		}, nil
	}

	// The storefront photo is stored for the webhook, never sent to the
	// model.
	if input.Kind == domain.KindFacade {
		return s.facadeResult(input, imageBytes), nil
	}

	op := func(ctx context.Context, attempt int) (*domain.DocumentResult, error) {
		return s.attempt(ctx, input, imageBytes)
	}
	return s.controller.Execute(ctx, input.Kind, op)
}

// attempt is one extraction cycle: model call, parse, quality evaluation.
func (s *documentService) attempt(ctx context.Context, input domain.DocumentInput, imageBytes []byte) (*domain.DocumentResult, error) {
	rawText, err := s.extractor.ExtractText(ctx, port.ExtractInput{
		ImageBytes:  imageBytes,
		ContentType: input.ContentType,
		Prompt:      ocr.BuildPrompt(input.Kind),
	})
	if err != nil {
		return nil, err
	}

	record, strategy, err := s.parser.Parse(rawText, input.Kind)
	if err != nil {
		return nil, err
	}
	if strategy == extract.StrategyPatterns {
		log.Printf("documentService: %s parse degraded to pattern extraction", input.Kind)
	}

	docSchema, err := s.registry.Lookup(input.Kind)
	if err != nil {
		return nil, err
	}
	metrics := quality.Evaluate(record, docSchema)

	result := &domain.DocumentResult{
		Kind:        input.Kind,
		Success:     metrics.Accepted,
		Parsed:      record,
		RawText:     rawText,
		Quality:     &metrics,
		ProcessedAt: time.Now().UTC(),
	}
	if !metrics.Accepted {
		result.Error = "extraction quality below minimum required fields"
	}
	return result, nil
}

func (s *documentService) facadeResult(input domain.DocumentInput, imageBytes []byte) *domain.DocumentResult {
	_, _, validated := domain.DetectFileType(imageBytes)
	return &domain.DocumentResult{
		Kind:    domain.KindFacade,
		Success: true,
		Facade: &domain.FacadeInfo{
			StoredForWebhook: true,
			ImageValidated:   validated,
			FileSize:         input.Size,
			StorageKey:       input.StorageKey,
		},
		Attempts:    1,
		ProcessedAt: time.Now().UTC(),
	}
}

func (s *documentService) ProcessBatch(ctx context.Context, taskID uuid.UUID, inputs []domain.DocumentInput, progress ProgressFunc) (*domain.TaskResult, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrNoDocuments
	}

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		results    = make(map[domain.DocumentKind]*domain.DocumentResult, len(inputs))
		done       int
		successful int
	)

	for i := range inputs {
		input := inputs[i]
		wg.Add(1)
		go func() {
			defer wg.Done()

			result, err := s.ProcessDocument(ctx, input)
			if err != nil {
				// Abandoned mid-retry. The kind stays out of the result set
				// and consolidation treats it as not processed.
				log.Printf("documentService: task %s document %s abandoned: %v", taskID, input.Kind, err)
				return
			}

			// Success is counted per input, not per map entry, so a duplicate
			// kind slipping past validation cannot fail a clean batch.
			mu.Lock()
			results[input.Kind] = result
			if result.Success {
				successful++
			}
			done++
			finished := done
			mu.Unlock()

			if progress != nil {
				progress(finished, len(inputs), input.Kind)
			}
		}()
	}
	wg.Wait()

	return &domain.TaskResult{
		TaskID:              taskID,
		Success:             successful == len(inputs),
		TotalDocuments:      len(inputs),
		SuccessfulDocuments: successful,
		FailedDocuments:     len(inputs) - successful,
		Results:             results,
		Consolidated:        consolidate.Merge(results),
		ProcessedAt:         time.Now().UTC(),
	}, nil
}
