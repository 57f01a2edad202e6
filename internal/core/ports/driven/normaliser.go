package driven

import (
	"context"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// Normaliser extracts plain text from an uploaded status report.
// Each normaliser handles specific MIME types (e.g., DOCX, email).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise transforms a raw document into its text rendition.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Document is the extracted text with its title and format.
	Document domain.SourceDocument
}
