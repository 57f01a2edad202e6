package domain

import (
	"strings"
	"time"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

// Available project statuses.
const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// IsValid returns true if the status is recognised.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	default:
		return false
	}
}

// Project is a tracked engagement that accumulates snapshots over time.
type Project struct {
	// ID is derived once from Name via ProjectID and never recomputed.
	ID string

	// Name is the human-readable project name.
	Name string

	// Issuer is the organisation that issued the work (e.g. the RFP owner).
	Issuer string

	// StartDate is the project start in YYYY-MM-DD form, if known.
	StartDate string

	// Summary is a short free-text description.
	Summary string

	// Contacts lists points of contact.
	Contacts []string

	// Tags are free-form labels.
	Tags []string

	// Status is the lifecycle state.
	Status ProjectStatus

	// CreatedAt is when the project was first registered.
	CreatedAt time.Time
}

// ProjectID derives the stable project identifier from a project name.
// The name is trimmed and lower-cased, then every character outside
// [a-z0-9_] becomes an underscore.
func ProjectID(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
