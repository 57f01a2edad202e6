package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// palette is the colour scheme of terminal output.
type palette struct {
	Title  lipgloss.Color
	Muted  lipgloss.Color
	High   lipgloss.Color
	Medium lipgloss.Color
	Low    lipgloss.Color
}

func defaultPalette() palette {
	return palette{
		Title:  lipgloss.Color("#7C3AED"), // Purple
		Muted:  lipgloss.Color("#6C7086"), // Medium gray
		High:   lipgloss.Color("#F38BA8"), // Red
		Medium: lipgloss.Color("#F9E2AF"), // Yellow
		Low:    lipgloss.Color("#A6E3A1"), // Green
	}
}

// styles renders alert levels and headings for one output stream.
// Colour is dropped automatically when the stream is not a terminal.
type styles struct {
	title  lipgloss.Style
	muted  lipgloss.Style
	high   lipgloss.Style
	medium lipgloss.Style
	low    lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	p := defaultPalette()
	return &styles{
		title:  r.NewStyle().Bold(true).Foreground(p.Title),
		muted:  r.NewStyle().Foreground(p.Muted),
		high:   r.NewStyle().Bold(true).Foreground(p.High),
		medium: r.NewStyle().Foreground(p.Medium),
		low:    r.NewStyle().Foreground(p.Low),
	}
}

// alert renders a level padded to a fixed column width.
func (s *styles) alert(level domain.AlertLevel) string {
	text := fmt.Sprintf("%-6s", level)
	switch level {
	case domain.AlertHigh:
		return s.high.Render(text)
	case domain.AlertMedium:
		return s.medium.Render(text)
	case domain.AlertLow:
		return s.low.Render(text)
	default:
		return s.muted.Render(text)
	}
}

func (s *styles) heading(text string) string {
	return s.title.Render(text)
}
