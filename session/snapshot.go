package session

import (
	"strings"

	"github.com/avelkey/paperflow/types"
)

// Snapshot is a read-only view of the session at a given round. It is
// built from copies and never mutated after construction, so it is safe
// to share across concurrently executing agents.
type Snapshot struct {
	sessionID string
	round     int
	facts     *types.StructuredFacts
	accepted  map[types.Role]*types.Contribution
}

// SessionID returns the owning session's identifier.
func (s *Snapshot) SessionID() string { return s.sessionID }

// Round returns the round this snapshot was taken at.
func (s *Snapshot) Round() int { return s.round }

// Facts returns the seed facts. Read-only.
func (s *Snapshot) Facts() *types.StructuredFacts { return s.facts }

// Accepted returns the accepted contribution for role, if any.
// The returned contribution is owned by the snapshot: read-only.
func (s *Snapshot) Accepted(role types.Role) (*types.Contribution, bool) {
	c, ok := s.accepted[role]
	return c, ok
}

// HasAccepted reports whether role has an accepted contribution.
func (s *Snapshot) HasAccepted(role types.Role) bool {
	_, ok := s.accepted[role]
	return ok
}

// Roles returns the roles with accepted contributions, in document order.
func (s *Snapshot) Roles() []types.Role {
	roles := make([]types.Role, 0, len(s.accepted))
	for role := range s.accepted {
		roles = append(roles, role)
	}
	return types.DocumentOrder(roles)
}

// PriorSections renders the accepted sections in document order as
// prompt-ready text, mirroring how the coordinator passes earlier
// sections to downstream agents.
func (s *Snapshot) PriorSections() string {
	roles := s.Roles()
	if len(roles) == 0 {
		return "(none yet)"
	}
	var b strings.Builder
	for i, role := range roles {
		if i > 0 {
			b.WriteString("\n\n")
		}
		c := s.accepted[role]
		b.WriteString("=== ")
		b.WriteString(strings.ToUpper(string(role)))
		b.WriteString(" ===\n")
		b.WriteString(c.Text)
	}
	return b.String()
}
