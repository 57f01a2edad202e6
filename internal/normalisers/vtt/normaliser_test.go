package vtt

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

const standup = `WEBVTT
Kind: captions

NOTE exported from the weekly steering call
spans two lines

STYLE
::cue { color: white }

1
00:00:01.000 --> 00:00:04.500
<v Alice Chen>Budget is at 45 percent.</v>

2
00:00:04.500 --> 00:00:07.000 align:start
<v Alice Chen>Vendor contract slipped a week.</v>

3
00:00:07.000 --> 00:00:09.250
<v.lead Bob>Client sentiment is down &amp; the sponsor
is asking for a recovery plan.

00:00:09.250 --> 00:00:10.000
<i>inaudible</i>
`

func normalise(t *testing.T, content string) (*domain.SourceDocument, error) {
	t.Helper()
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:      "/calls/steering-2024-03-15.vtt",
		MIMEType: domain.MIMETypeVTT,
		Content:  []byte(content),
	})
	if err != nil {
		return nil, err
	}
	return &result.Document, nil
}

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"text/vtt"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_Transcript(t *testing.T) {
	doc, err := normalise(t, standup)
	require.NoError(t, err)

	assert.Equal(t, "Alice Chen: Budget is at 45 percent. Vendor contract slipped a week.\n"+
		"Bob: Client sentiment is down & the sponsor is asking for a recovery plan.\n"+
		"inaudible", doc.Content)
	assert.Equal(t, "steering 2024 03 15", doc.Title)
	assert.Equal(t, "vtt", doc.Format)
	assert.Equal(t, 4, doc.Metadata["cues"])
	assert.Equal(t, 2, doc.Metadata["speakers"])
	assert.Equal(t, "00:00:10.000", doc.Metadata["duration"])
}

func TestNormalise_CRLFAndBOM(t *testing.T) {
	content := "\xEF\xBB\xBF" + strings.ReplaceAll("WEBVTT\n\n00:01.000 --> 00:02.000\nHello\n", "\n", "\r\n")

	doc, err := normalise(t, content)
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Content)
	assert.Equal(t, 1, doc.Metadata["cues"])
	assert.Equal(t, 0, doc.Metadata["speakers"])
}

func TestNormalise_HeaderOnly(t *testing.T) {
	doc, err := normalise(t, "WEBVTT\n")
	require.NoError(t, err)
	assert.Empty(t, doc.Content)
	assert.Equal(t, 0, doc.Metadata["cues"])
	assert.NotContains(t, doc.Metadata, "duration")
}

func TestNormalise_MissingHeader(t *testing.T) {
	_, err := normalise(t, "00:01.000 --> 00:02.000\nHello\n")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}
