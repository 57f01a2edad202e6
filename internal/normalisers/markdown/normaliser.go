// Package markdown extracts text from Markdown status reports.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents. Formatting noise is removed but
// the line structure is kept: headings, list items and table rows stay on
// their own lines because extraction reads KPIs and registers from them.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeMarkdown, "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts a markdown document to plain text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")
	frontTitle, text := splitFrontMatter(text)

	title := frontTitle
	if title == "" {
		title = firstHeading(text)
	}

	return normalisers.NewResult(raw, normalisers.Title(raw, title), simplify(text), "markdown"), nil
}

// splitFrontMatter removes a leading YAML front matter block and returns
// its title field, if any.
func splitFrontMatter(text string) (title, rest string) {
	if !strings.HasPrefix(text, "---\n") {
		return "", text
	}
	end := strings.Index(text[4:], "\n---")
	if end == -1 {
		return "", text
	}
	block := text[4 : 4+end]
	rest = strings.TrimPrefix(text[4+end+4:], "\n")

	for _, line := range strings.Split(block, "\n") {
		if key, value, ok := strings.Cut(line, ":"); ok && strings.TrimSpace(key) == "title" {
			title = strings.Trim(strings.TrimSpace(value), `"'`)
		}
	}
	return title, rest
}

var h1 = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t]*#*[ \t]*$`)

func firstHeading(text string) string {
	if m := h1.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

var (
	fence        = regexp.MustCompile("(?m)^```.*$")
	comments     = regexp.MustCompile(`(?s)<!--.*?-->`)
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headings     = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+(.*?)(?:[ \t]+#+)?[ \t]*$`)
	blockquote   = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	rules        = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	tableDivider = regexp.MustCompile(`(?m)^[ \t]*\|?[ \t]*:?-{3,}:?[ \t]*(\|[ \t]*:?-{3,}:?[ \t]*)*\|?[ \t]*$`)
	emphasis     = regexp.MustCompile(`(\*\*|__|~~)(\S(?:.*?\S)?)(\*\*|__|~~)`)
	inlineCode   = regexp.MustCompile("`([^`]+)`")
)

// simplify strips markup while keeping content and line structure.
func simplify(text string) string {
	text = comments.ReplaceAllString(text, "")
	text = fence.ReplaceAllString(text, "")
	text = images.ReplaceAllString(text, "$1")
	text = links.ReplaceAllString(text, "$1")
	text = tableDivider.ReplaceAllString(text, "")
	text = rules.ReplaceAllString(text, "")
	text = headings.ReplaceAllString(text, "$1")
	text = blockquote.ReplaceAllString(text, "")
	text = emphasis.ReplaceAllString(text, "$2")
	text = inlineCode.ReplaceAllString(text, "$1")
	return normalisers.CompactLines(text)
}
