// Package pptx extracts text from slide deck status reports.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Normaliser handles PPTX decks. Each text paragraph on a slide becomes one
// line, table rows are joined by " | ", and slides are separated by a blank line.
// Speaker notes are not read.
type Normaliser struct{}

// New creates a new PPTX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypePPTX}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every ppt/slides/slideN.xml in slide number order.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a pptx archive: %v", domain.ErrInvalidInput, err)
	}

	slides := slideParts(reader)
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: pptx has no slides", domain.ErrInvalidInput)
	}

	texts := make([]string, 0, len(slides))
	for _, name := range slides {
		data, err := normalisers.ReadZipPart(reader, name)
		if err != nil {
			return nil, err
		}
		text, err := normalisers.ExtractText(data)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidInput, name, err)
		}
		if text != "" {
			texts = append(texts, text)
		}
	}

	result := normalisers.NewResult(raw, normalisers.Title(raw, normalisers.PackageTitle(reader)),
		strings.Join(texts, "\n\n"), "pptx")
	result.Document.Metadata["slides"] = len(slides)
	return result, nil
}

// slideParts lists the slide part names ordered by slide number.
func slideParts(reader *zip.Reader) []string {
	type part struct {
		name   string
		number int
	}
	var parts []part
	for _, file := range reader.File {
		m := slidePart.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, part{file.Name, number})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].number < parts[j].number })

	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.name
	}
	return names
}
