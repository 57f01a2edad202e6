// Package vtt extracts the spoken text from WebVTT meeting transcripts.
package vtt

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser turns transcript cues into one line per utterance. Voice
// spans become a "Speaker: " prefix and consecutive cues from the same
// speaker are merged. A voice applies to the rest of its cue.
type Normaliser struct{}

// New creates a new WebVTT normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeVTT}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

var (
	timing   = regexp.MustCompile(`^(\S+)\s+-->\s+(\S+)`)
	voice    = regexp.MustCompile(`<v(?:\.[^\s>]*)?\s+([^>]+)>`)
	tags     = regexp.MustCompile(`</?[^>]*>`)
	entities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&nbsp;", " ", "&lrm;", "", "&rlm;", "")
)

type utterance struct {
	speaker string
	text    []string
}

// Normalise converts a transcript to plain text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := bytes.TrimPrefix(raw.Content, []byte{0xEF, 0xBB, 0xBF})
	if !bytes.HasPrefix(content, []byte("WEBVTT")) {
		return nil, fmt.Errorf("%w: missing WEBVTT header", domain.ErrInvalidInput)
	}

	var (
		lines    []utterance
		cues     int
		lastEnd  string
		inCue    bool
		skipping bool
		speaker  string
	)

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			// Header line and any header text run until the first blank line.
			first = false
			skipping = true
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			inCue = false
			skipping = false
			continue
		}
		if skipping {
			continue
		}

		if !inCue {
			if isBlockKeyword(trimmed) {
				skipping = true
				continue
			}
			if m := timing.FindStringSubmatch(trimmed); m != nil {
				inCue = true
				cues++
				lastEnd = m[2]
				speaker = ""
			}
			// Anything else before a timing line is a cue identifier.
			continue
		}

		voiced, text := parseCueLine(trimmed)
		if voiced != "" {
			speaker = voiced
		}
		if text == "" {
			continue
		}
		if len(lines) > 0 && speaker == lines[len(lines)-1].speaker {
			last := &lines[len(lines)-1]
			last.text = append(last.text, text)
			continue
		}
		lines = append(lines, utterance{speaker: speaker, text: []string{text}})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading transcript: %v", domain.ErrInvalidInput, err)
	}

	var b strings.Builder
	speakers := make(map[string]struct{})
	for i, u := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if u.speaker != "" {
			speakers[u.speaker] = struct{}{}
			b.WriteString(u.speaker)
			b.WriteString(": ")
		}
		b.WriteString(strings.Join(u.text, " "))
	}

	result := normalisers.NewResult(raw, normalisers.Title(raw, ""), b.String(), "vtt")
	result.Document.Metadata["cues"] = cues
	result.Document.Metadata["speakers"] = len(speakers)
	if lastEnd != "" {
		result.Document.Metadata["duration"] = lastEnd
	}
	return result, nil
}

func isBlockKeyword(line string) bool {
	for _, kw := range []string{"NOTE", "STYLE", "REGION"} {
		if line == kw || strings.HasPrefix(line, kw+" ") || strings.HasPrefix(line, kw+"\t") {
			return true
		}
	}
	return false
}

// parseCueLine returns the voice of a caption line, if any, and its text
// with markup removed.
func parseCueLine(line string) (speaker, text string) {
	if m := voice.FindStringSubmatch(line); m != nil {
		speaker = strings.TrimSpace(m[1])
	}
	text = entities.Replace(tags.ReplaceAllString(line, ""))
	return speaker, normalisers.CollapseSpaces(text)
}
