package coordinator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/avelkey/paperflow/session"
	"github.com/avelkey/paperflow/types"
)

// Conflict is not an error: it is the normal control-flow signal that a
// role's accepted contribution must be revised in a later round.
type Conflict struct {
	// Role is the role flagged for revision.
	Role types.Role
	// Source is the role whose contribution exposed the conflict.
	Source types.Role
	// Detail is passed to the revising agent as feedback.
	Detail string
}

// ConsistencyChecker detects contradictions between accepted
// contributions. The semantic detector is deliberately pluggable; the
// coordinator only defines the round/conflict protocol around it.
type ConsistencyChecker interface {
	Check(snap *session.Snapshot) []Conflict
}

// CheckerFunc adapts a function to the ConsistencyChecker interface.
type CheckerFunc func(snap *session.Snapshot) []Conflict

// Check implements ConsistencyChecker.
func (f CheckerFunc) Check(snap *session.Snapshot) []Conflict { return f(snap) }

// NoopChecker never reports conflicts.
func NoopChecker() ConsistencyChecker {
	return CheckerFunc(func(*session.Snapshot) []Conflict { return nil })
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?%?`)

// NumericCoverageChecker is the default checker: every numeric claim a
// section makes must be traceable to its dependencies' accepted text or
// to the extracted facts. A discussion section citing a figure that the
// accepted results section never states flags the results section for
// revision, since the upstream text is treated as the source of truth.
type NumericCoverageChecker struct{}

// Check implements ConsistencyChecker.
func (NumericCoverageChecker) Check(snap *session.Snapshot) []Conflict {
	var conflicts []Conflict
	flagged := make(map[types.Role]bool)

	for _, role := range snap.Roles() {
		c, _ := snap.Accepted(role)
		if c.Unavailable {
			continue
		}
		deps := role.Dependencies()
		if len(deps) == 0 {
			continue
		}

		source := snap.Facts().Render()
		var nearest types.Role
		for _, dep := range deps {
			if dc, ok := snap.Accepted(dep); ok && !dc.Unavailable {
				source += "\n" + dc.Text
				nearest = dep
			}
		}
		if nearest == "" {
			continue
		}

		for _, num := range numericClaims(c.Text) {
			if strings.Contains(source, num) {
				continue
			}
			if flagged[nearest] {
				continue
			}
			flagged[nearest] = true
			conflicts = append(conflicts, Conflict{
				Role:   nearest,
				Source: role,
				Detail: fmt.Sprintf(
					"the %s section cites %q, which does not appear in the accepted %s section or the extracted facts",
					role, num, nearest,
				),
			})
		}
	}
	return conflicts
}

// numericClaims extracts the numeric tokens worth cross-checking.
// Single digits are skipped: they are usually list markers, not claims.
func numericClaims(text string) []string {
	var out []string
	for _, m := range numberPattern.FindAllString(text, -1) {
		if len(m) <= 1 {
			continue
		}
		out = append(out, m)
	}
	return out
}
