package normalisers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/normalisers"
	"github.com/PetersQuinn/executive-insights/internal/normalisers/markdown"
	"github.com/PetersQuinn/executive-insights/internal/normalisers/plaintext"
	"github.com/PetersQuinn/executive-insights/internal/normalisers/vtt"
)

// stubNormaliser tags its output so tests can see which normaliser ran.
type stubNormaliser struct {
	name     string
	mime     []string
	priority int
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mime }
func (s *stubNormaliser) Priority() int                { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return normalisers.NewResult(raw, s.name, string(raw.Content), s.name), nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	low := &stubNormaliser{name: "low", mime: []string{"text/plain"}, priority: 1}
	high := &stubNormaliser{name: "high", mime: []string{"text/plain"}, priority: 90}
	r := normalisers.NewRegistry(low, high)

	result, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "a.txt", MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "high", result.Document.Format)
}

func TestRegistry_TiesGoToFirstRegistered(t *testing.T) {
	r := normalisers.NewRegistry()
	r.Register(&stubNormaliser{name: "first", mime: []string{"text/plain"}, priority: 5})
	r.Register(&stubNormaliser{name: "second", mime: []string{"text/plain"}, priority: 5})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "first", result.Document.Format)
}

func TestRegistry_MIMEParametersAndCase(t *testing.T) {
	r := normalisers.NewRegistry(plaintext.New())

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		URI:      "notes.txt",
		MIMEType: "Text/Plain; charset=utf-8",
		Content:  []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Document.Content)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := normalisers.NewRegistry(markdown.New())

	_, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "application/pdf"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "application/pdf")
}

func TestRegistry_NilDocument(t *testing.T) {
	_, err := normalisers.NewRegistry().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := normalisers.NewRegistry(vtt.New(), markdown.New(), &stubNormaliser{mime: []string{"text/vtt"}})

	assert.Equal(t, []string{"text/markdown", "text/vtt", "text/x-markdown"}, r.SupportedMIMETypes())
}

func TestTitleFromURI(t *testing.T) {
	assert.Equal(t, "weekly status 2024", normalisers.TitleFromURI("/tmp/weekly_status-2024.docx"))
	assert.Equal(t, "", normalisers.TitleFromURI(""))
}

func TestCompactLines(t *testing.T) {
	assert.Equal(t, "a\nb", normalisers.CompactLines("  a  \r\n\n\t\nb\n"))
}
