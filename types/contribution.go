package types

import (
	"time"

	"github.com/google/uuid"
)

// ContributionStatus is the lifecycle status of a contribution.
type ContributionStatus string

const (
	// StatusDraft is the status of a freshly produced section draft.
	StatusDraft ContributionStatus = "draft"
	// StatusAccepted marks the active contribution for a role.
	StatusAccepted ContributionStatus = "accepted"
	// StatusSuperseded marks a contribution replaced by a later one.
	StatusSuperseded ContributionStatus = "superseded"
)

// Contribution is one agent's output for one round. The text is never
// edited in place; only the status transitions over its lifetime.
type Contribution struct {
	ID           string             `json:"id"`
	Role         Role               `json:"role"`
	Round        int                `json:"round"`
	Text         string             `json:"text"`
	References   []Role             `json:"references,omitempty"`
	Claims       []string           `json:"claims,omitempty"`
	Status       ContributionStatus `json:"status"`
	Completeness float64            `json:"completeness"`
	Attempts     int                `json:"attempts"`
	Revision     bool               `json:"revision"`
	Unavailable  bool               `json:"unavailable"`
	CreatedAt    time.Time          `json:"created_at"`
}

// NewContribution creates a draft contribution for the given role and round.
func NewContribution(role Role, round int, text string) *Contribution {
	return &Contribution{
		ID:        uuid.NewString(),
		Role:      role,
		Round:     round,
		Text:      text,
		Status:    StatusDraft,
		CreatedAt: time.Now(),
	}
}

// Clone returns a deep copy of the contribution.
func (c *Contribution) Clone() *Contribution {
	if c == nil {
		return nil
	}
	cp := *c
	cp.References = append([]Role(nil), c.References...)
	cp.Claims = append([]string(nil), c.Claims...)
	return &cp
}

// ReferencesRole reports whether the contribution declares a dependency on role.
func (c *Contribution) ReferencesRole(role Role) bool {
	for _, r := range c.References {
		if r == role {
			return true
		}
	}
	return false
}
