package port

import "context"

// ExtractInput carries one document image and the prompt driving extraction.
type ExtractInput struct {
	ImageBytes  []byte
	ContentType string
	Prompt      string
}

// TextExtractor abstracts the external vision model. Implementations return
// the model's raw text answer; structuring it is the parser's job.
type TextExtractor interface {
	ExtractText(ctx context.Context, input ExtractInput) (string, error)
}
