package coordinator

import (
	"fmt"

	"github.com/avelkey/paperflow/types"
)

// Phase is a coordinator state-machine phase.
type Phase string

const (
	PhaseInit         Phase = "init"
	PhaseRoundPending Phase = "round_pending"
	PhaseDispatching  Phase = "dispatching"
	PhaseMerging      Phase = "merging"
	PhaseConverged    Phase = "converged"
	PhaseExhausted    Phase = "exhausted"
	PhaseFinalized    Phase = "finalized"
)

// sessionState is the mutable per-session scheduling state. It is owned
// exclusively by the coordinator goroutine driving the session; nothing
// else reads or writes it.
type sessionState struct {
	phase  Phase
	round  int // completed rounds
	budget int
	// needsRevision maps flagged roles to the feedback that will steer
	// their revision.
	needsRevision map[types.Role]string
	converged     bool
	degraded      map[types.Role]bool
	seq           int // transcript sequence counter
}

func newSessionState(budget int) *sessionState {
	return &sessionState{
		phase:         PhaseInit,
		budget:        budget,
		needsRevision: make(map[types.Role]string),
		degraded:      make(map[types.Role]bool),
	}
}

// revisionTarget returns the topologically-first flagged role not yet
// dispatched this round. When two roles both require revision, the
// upstream one is revised first; its dependents are re-evaluated against
// the revised text before their own revision is attempted.
func (s *sessionState) revisionTarget(called map[types.Role]bool) (types.Role, string, bool) {
	flagged := make([]types.Role, 0, len(s.needsRevision))
	for role := range s.needsRevision {
		flagged = append(flagged, role)
	}
	for _, role := range types.DocumentOrder(flagged) {
		if called[role] {
			continue
		}
		return role, s.needsRevision[role], true
	}
	return "", "", false
}

// FatalError is a session-fatal failure, tagged with the state-machine
// phase that produced it.
type FatalError struct {
	Phase Phase
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("session failed during %s: %v", e.Phase, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
