// Package docx extracts text from Word status reports.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents. Body paragraphs become one line each;
// table rows become one line with cells joined by " | ".
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeDOCX}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of word/document.xml.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %v", domain.ErrInvalidInput, err)
	}

	body, err := normalisers.ReadZipPart(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("%w: docx has no word/document.xml", domain.ErrInvalidInput)
	}

	content, err := normalisers.ExtractText(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing document.xml: %v", domain.ErrInvalidInput, err)
	}

	title := normalisers.PackageTitle(reader)
	return normalisers.NewResult(raw, normalisers.Title(raw, title), content, "docx"), nil
}
