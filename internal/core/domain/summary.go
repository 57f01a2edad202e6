package domain

import "time"

// Tone sets the voice of a generated executive summary.
type Tone string

// Available tones.
const (
	ToneFormal    Tone = "Formal"
	ToneFriendly  Tone = "Friendly"
	ToneTechnical Tone = "Technical"
)

// AllTones returns every supported tone.
func AllTones() []Tone {
	return []Tone{ToneFormal, ToneFriendly, ToneTechnical}
}

// IsValid returns true if the tone is recognised.
func (t Tone) IsValid() bool {
	switch t {
	case ToneFormal, ToneFriendly, ToneTechnical:
		return true
	default:
		return false
	}
}

// ExecutiveSummary is an audit-trail record of a generated summary.
type ExecutiveSummary struct {
	ID          string
	ProjectID   string
	Tone        Tone
	SnapshotIDs []string
	Content     string
	GeneratedAt time.Time
}
