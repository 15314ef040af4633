// Package session implements the shared context store: the append-only
// record of contributions a paper-writing session accumulates across
// rounds. The coordinator is the store's single writer; agents only ever
// see immutable snapshots.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/avelkey/paperflow/types"
)

// Store is the append-only contribution log plus the "current" view of
// the latest accepted contribution per role. Writes are mutually
// exclusive; snapshots are copies and safe for concurrent reads.
type Store struct {
	mu      sync.RWMutex
	id      string
	facts   *types.StructuredFacts
	history []*types.Contribution
	active  map[types.Role]*types.Contribution
}

// NewStore creates a store seeded with the extracted facts.
func NewStore(facts *types.StructuredFacts) *Store {
	return &Store{
		id:     uuid.NewString(),
		facts:  facts,
		active: make(map[types.Role]*types.Contribution),
	}
}

// ID returns the session identifier.
func (s *Store) ID() string { return s.id }

// Facts returns the seed facts. The caller must treat them as read-only.
func (s *Store) Facts() *types.StructuredFacts { return s.facts }

// Accept appends c as the accepted contribution for its role,
// atomically superseding the previously accepted one. There is no
// window in which two accepted contributions for the same role coexist.
func (s *Store) Accept(c *types.Contribution) error {
	if c == nil {
		return fmt.Errorf("accept: nil contribution")
	}
	if !c.Role.Valid() {
		return fmt.Errorf("accept: unknown role %q", c.Role)
	}
	if c.Status != types.StatusDraft {
		return fmt.Errorf("accept: contribution %s has status %q, want draft", c.ID, c.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.active[c.Role]; ok {
		prior.Status = types.StatusSuperseded
	}
	owned := c.Clone()
	owned.Status = types.StatusAccepted
	s.history = append(s.history, owned)
	s.active[c.Role] = owned
	return nil
}

// Active returns a copy of the currently accepted contribution for role.
func (s *Store) Active(role types.Role) (*types.Contribution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.active[role]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// History returns copies of every contribution ever accepted, in append
// order. Superseded entries are retained with their final status.
func (s *Store) History() []*types.Contribution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Contribution, len(s.history))
	for i, c := range s.history {
		out[i] = c.Clone()
	}
	return out
}

// Snapshot returns the immutable view of the session as of the end of
// round upToRound: for each role, the last contribution accepted in any
// round <= upToRound. Because contributions are never edited in place
// and the view is computed from append order alone, calling Snapshot
// with the same round always yields equal views regardless of later
// appends.
func (s *Store) Snapshot(upToRound int) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accepted := make(map[types.Role]*types.Contribution)
	for _, c := range s.history {
		if c.Round > upToRound {
			continue
		}
		cp := c.Clone()
		// The view presents whatever was current at that round as
		// accepted, even if a later round has since superseded it.
		cp.Status = types.StatusAccepted
		accepted[c.Role] = cp
	}
	return &Snapshot{
		sessionID: s.id,
		round:     upToRound,
		facts:     s.facts,
		accepted:  accepted,
	}
}
