// Package eml extracts text from status update emails.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxDepth bounds multipart nesting.
const maxDepth = 8

// Normaliser handles RFC 822 email messages. Plain-text parts are preferred;
// HTML parts are used, stripped of markup, only when no plain text exists.
// Attachments are ignored.
type Normaliser struct{}

// New creates a new EML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeEmail}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise renders the message as a short header block followed by the body.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: reading email: %v", domain.ErrInvalidInput, err)
	}

	headers := []struct{ name, value string }{
		{"From", decodeHeader(msg.Header.Get("From"))},
		{"To", decodeHeader(msg.Header.Get("To"))},
		{"Date", msg.Header.Get("Date")},
		{"Subject", decodeHeader(msg.Header.Get("Subject"))},
	}

	var plain, htmlParts []string
	if err := collect(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"),
		msg.Body, 0, &plain, &htmlParts); err != nil {
		return nil, err
	}

	body := strings.Join(plain, "\n")
	if strings.TrimSpace(body) == "" {
		body = strings.Join(htmlParts, "\n")
	}

	var content strings.Builder
	for _, h := range headers {
		if h.value != "" {
			fmt.Fprintf(&content, "%s: %s\n", h.name, h.value)
		}
	}
	content.WriteString("\n")
	content.WriteString(strings.TrimSpace(body))

	result := normalisers.NewResult(raw, normalisers.Title(raw, headers[3].value),
		strings.TrimSpace(content.String()), "eml")
	for _, h := range headers[:3] {
		if h.value != "" {
			result.Document.Metadata[strings.ToLower(h.name)] = h.value
		}
	}
	return result, nil
}

// collect walks a MIME entity, appending decoded text/plain and stripped
// text/html bodies.
func collect(contentType, encoding string, body io.Reader, depth int, plain, htmlParts *[]string) error {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxDepth || params["boundary"] == "" {
			return nil
		}
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: reading multipart email: %v", domain.ErrInvalidInput, err)
			}
			if isAttachment(part.Header.Get("Content-Disposition")) {
				continue
			}
			if err := collect(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"),
				part, depth+1, plain, htmlParts); err != nil {
				return err
			}
		}
	}

	if mediaType != "text/plain" && mediaType != "text/html" {
		return nil
	}

	data, err := io.ReadAll(decodeTransfer(encoding, body))
	if err != nil {
		return fmt.Errorf("%w: reading email body: %v", domain.ErrInvalidInput, err)
	}
	if mediaType == "text/html" {
		*htmlParts = append(*htmlParts, stripHTML(string(data)))
	} else {
		*plain = append(*plain, strings.ReplaceAll(string(data), "\r\n", "\n"))
	}
	return nil
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, &newlineStripper{r: r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// newlineStripper drops CR and LF so wrapped base64 decodes.
type newlineStripper struct {
	r io.Reader
}

func (s *newlineStripper) Read(p []byte) (int, error) {
	for {
		n, err := s.r.Read(p)
		kept := 0
		for _, b := range p[:n] {
			if b != '\r' && b != '\n' {
				p[kept] = b
				kept++
			}
		}
		if kept > 0 || err != nil {
			return kept, err
		}
	}
}

func isAttachment(disposition string) bool {
	d, _, err := mime.ParseMediaType(disposition)
	return err == nil && d == "attachment"
}

// decodeHeader decodes RFC 2047 encoded words, keeping the original on failure.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

var (
	blockTags = regexp.MustCompile(`(?i)<(br|/p|/div|/tr|/li|/h[1-6])\b[^>]*>`)
	anyTag    = regexp.MustCompile(`(?s)<[^>]*>`)
	dropped   = regexp.MustCompile(`(?is)<(script|style)\b.*?</(script|style)>`)
)

// stripHTML renders an HTML body as plain lines.
func stripHTML(s string) string {
	s = dropped.ReplaceAllString(s, "")
	s = blockTags.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	return normalisers.CompactLines(html.UnescapeString(s))
}
