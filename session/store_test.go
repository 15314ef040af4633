package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkey/paperflow/types"
)

func draft(role types.Role, round int, text string) *types.Contribution {
	return types.NewContribution(role, round, text)
}

func TestAcceptAndActive(t *testing.T) {
	s := NewStore(&types.StructuredFacts{Topic: "t"})
	require.NotEmpty(t, s.ID())

	require.NoError(t, s.Accept(draft(types.RoleMethods, 1, "v1")))

	got, ok := s.Active(types.RoleMethods)
	require.True(t, ok)
	assert.Equal(t, "v1", got.Text)
	assert.Equal(t, types.StatusAccepted, got.Status)

	_, ok = s.Active(types.RoleResults)
	assert.False(t, ok)
}

func TestAcceptSupersedesAtomically(t *testing.T) {
	s := NewStore(&types.StructuredFacts{})
	require.NoError(t, s.Accept(draft(types.RoleMethods, 1, "v1")))
	require.NoError(t, s.Accept(draft(types.RoleMethods, 2, "v2")))

	got, ok := s.Active(types.RoleMethods)
	require.True(t, ok)
	assert.Equal(t, "v2", got.Text)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, types.StatusSuperseded, history[0].Status)
	assert.Equal(t, types.StatusAccepted, history[1].Status)

	// Never two accepted contributions for one role.
	acceptedCount := 0
	for _, c := range history {
		if c.Status == types.StatusAccepted {
			acceptedCount++
		}
	}
	assert.Equal(t, 1, acceptedCount)
}

func TestAcceptRejectsInvalidInput(t *testing.T) {
	s := NewStore(&types.StructuredFacts{})

	assert.Error(t, s.Accept(nil))
	assert.Error(t, s.Accept(draft(types.Role("appendix"), 1, "x")))

	c := draft(types.RoleMethods, 1, "x")
	c.Status = types.StatusAccepted
	assert.Error(t, s.Accept(c), "re-accepting an already accepted contribution must fail")
}

func TestAcceptDoesNotAliasCallerValue(t *testing.T) {
	s := NewStore(&types.StructuredFacts{})
	c := draft(types.RoleMethods, 1, "original")
	require.NoError(t, s.Accept(c))

	c.Text = "mutated after accept"
	got, _ := s.Active(types.RoleMethods)
	assert.Equal(t, "original", got.Text)
}

func TestSnapshotViewPerRound(t *testing.T) {
	s := NewStore(&types.StructuredFacts{Topic: "t"})
	require.NoError(t, s.Accept(draft(types.RoleMethods, 1, "m1")))
	require.NoError(t, s.Accept(draft(types.RoleResults, 1, "r1")))
	require.NoError(t, s.Accept(draft(types.RoleResults, 2, "r2")))

	snap := s.Snapshot(1)
	m, ok := snap.Accepted(types.RoleMethods)
	require.True(t, ok)
	assert.Equal(t, "m1", m.Text)
	r, ok := snap.Accepted(types.RoleResults)
	require.True(t, ok)
	assert.Equal(t, "r1", r.Text, "round 1 view must not see the round 2 text")
	assert.Equal(t, types.StatusAccepted, r.Status)

	snap2 := s.Snapshot(2)
	r2, _ := snap2.Accepted(types.RoleResults)
	assert.Equal(t, "r2", r2.Text)
}

func TestSnapshotIdempotent(t *testing.T) {
	s := NewStore(&types.StructuredFacts{})
	require.NoError(t, s.Accept(draft(types.RoleMethods, 1, "m1")))

	before := s.Snapshot(1)

	// Later rounds must not change what the round 1 view exposes.
	require.NoError(t, s.Accept(draft(types.RoleMethods, 2, "m2")))
	require.NoError(t, s.Accept(draft(types.RoleResults, 2, "r2")))
	after := s.Snapshot(1)

	assert.Equal(t, before.PriorSections(), after.PriorSections())
	assert.Equal(t, before.Roles(), after.Roles())
	b, _ := before.Accepted(types.RoleMethods)
	a, _ := after.Accepted(types.RoleMethods)
	assert.Equal(t, b.Text, a.Text)
}

func TestSnapshotPriorSections(t *testing.T) {
	s := NewStore(&types.StructuredFacts{})
	assert.Equal(t, "(none yet)", s.Snapshot(0).PriorSections())

	require.NoError(t, s.Accept(draft(types.RoleResults, 1, "findings here")))
	require.NoError(t, s.Accept(draft(types.RoleMethods, 1, "design here")))

	rendered := s.Snapshot(1).PriorSections()
	assert.Contains(t, rendered, "=== METHODS ===\ndesign here")
	assert.Contains(t, rendered, "=== RESULTS ===\nfindings here")
	// Document order, not accept order.
	assert.Less(t,
		indexOf(rendered, "METHODS"),
		indexOf(rendered, "RESULTS"),
	)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
