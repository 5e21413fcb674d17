package port

import (
	"context"

	"extractos/internal/domain"
	"extractos/internal/schema"
)

// ExtractInput carries one page image and its extraction instructions.
type ExtractInput struct {
	// ImageJPEG is the JPEG-encoded page image.
	ImageJPEG []byte
	// Prompt is the instruction text sent alongside the image.
	Prompt string
	// Schema, when non-nil, binds the call to a compiled schema: the response
	// is validated and coerced instead of repair-parsed.
	Schema *schema.Compiled
}

// ExtractOutput is the structured result of one model invocation. Usage is
// always populated, with FileName and PageNumber left for the caller to tag.
type ExtractOutput struct {
	Record domain.Record
	Usage  domain.PageUsage
}

// ExtractionClient abstracts one vision-LLM backend.
type ExtractionClient interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
