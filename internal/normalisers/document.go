package normalisers

import (
	"path/filepath"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

// NewResult builds a normalisation result carrying a copy of the raw
// metadata plus the mime_type and format keys.
func NewResult(raw *domain.RawDocument, title, content, format string) *driven.NormaliseResult {
	metadata := make(map[string]any, len(raw.Metadata)+2)
	for k, v := range raw.Metadata {
		metadata[k] = v
	}
	metadata["mime_type"] = raw.MIMEType
	metadata["format"] = format

	return &driven.NormaliseResult{
		Document: domain.SourceDocument{
			URI:      raw.URI,
			Title:    title,
			Content:  content,
			Format:   format,
			Metadata: metadata,
		},
	}
}

// TitleFromURI derives a readable title from a file name:
// "weekly_status-2024.docx" becomes "weekly status 2024".
func TitleFromURI(uri string) string {
	name := filepath.Base(uri)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

// Title prefers a metadata title, then the given fallback, then the file name.
func Title(raw *domain.RawDocument, fallback string) string {
	if title, ok := raw.Metadata["title"].(string); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return fallback
	}
	return TitleFromURI(raw.URI)
}

// CollapseSpaces trims s and folds every run of whitespace into one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CompactLines trims every line and drops blank ones.
func CompactLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
