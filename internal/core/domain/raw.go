package domain

import (
	"mime"
	"path/filepath"
	"strings"
)

// RawDocument represents the opaque bytes of an uploaded status report.
// It is the input to normalisation.
type RawDocument struct {
	// URI is the original location (file path, URL, etc).
	URI string

	// MIMEType is the content type (e.g., "message/rfc822").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains upload-specific key-value pairs.
	Metadata map[string]any
}

// SourceDocument is the plain-text rendition of a status report,
// ready for snapshot extraction.
type SourceDocument struct {
	// URI is the original location.
	URI string

	// Title is taken from document properties, headers, or the filename.
	Title string

	// Content is the full extracted text.
	Content string

	// Format is the short format name, e.g. "docx" or "eml".
	Format string

	// Metadata contains format-specific key-value pairs.
	Metadata map[string]any
}

// Status report MIME types.
const (
	MIMETypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypePPTX     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MIMETypeEmail    = "message/rfc822"
	MIMETypeVTT      = "text/vtt"
	MIMETypePlain    = "text/plain"
	MIMETypeMarkdown = "text/markdown"
	MIMETypeJSON     = "application/json"
)

// extMIMETypes maps report file extensions to MIME types.
var extMIMETypes = map[string]string{
	".docx":     MIMETypeDOCX,
	".pptx":     MIMETypePPTX,
	".eml":      MIMETypeEmail,
	".vtt":      MIMETypeVTT,
	".txt":      MIMETypePlain,
	".md":       MIMETypeMarkdown,
	".markdown": MIMETypeMarkdown,
	".json":     MIMETypeJSON,
}

// MIMETypeForFile determines the MIME type of a report from its extension.
// Unknown extensions fall back to Go's registry, then to text/plain.
func MIMETypeForFile(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return MIMETypePlain
	}
	if t, ok := extMIMETypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if idx := strings.Index(t, ";"); idx != -1 {
			t = strings.TrimSpace(t[:idx])
		}
		return t
	}
	return MIMETypePlain
}
