package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkey/paperflow/session"
	"github.com/avelkey/paperflow/types"
)

func snapWith(t *testing.T, facts *types.StructuredFacts, texts map[types.Role]string) *session.Snapshot {
	t.Helper()
	store := session.NewStore(facts)
	for _, role := range types.DocumentOrder(keys(texts)) {
		require.NoError(t, store.Accept(types.NewContribution(role, 1, texts[role])))
	}
	return store.Snapshot(1)
}

func keys(m map[types.Role]string) []types.Role {
	out := make([]types.Role, 0, len(m))
	for r := range m {
		out = append(out, r)
	}
	return out
}

func TestNumericCoverageCleanSession(t *testing.T) {
	facts := &types.StructuredFacts{Facts: []types.Fact{
		{Kind: types.FactFinding, Value: "accuracy dropped by 23% in the deprived group"},
	}}
	snap := snapWith(t, facts, map[types.Role]string{
		types.RoleMethods:    "We recruited 48 participants.",
		types.RoleResults:    "Of the 48 participants, accuracy dropped by 23%.",
		types.RoleDiscussion: "The 23% drop is notable.",
	})
	assert.Empty(t, NumericCoverageChecker{}.Check(snap))
}

func TestNumericCoverageFlagsNearestDependency(t *testing.T) {
	snap := snapWith(t, &types.StructuredFacts{}, map[types.Role]string{
		types.RoleMethods:    "We recruited 48 participants.",
		types.RoleResults:    "Accuracy dropped for the 48 participants.",
		types.RoleDiscussion: "The 57% drop is notable.",
	})

	conflicts := NumericCoverageChecker{}.Check(snap)
	require.Len(t, conflicts, 1)
	assert.Equal(t, types.RoleResults, conflicts[0].Role,
		"the referenced upstream section is flagged, not the citing one")
	assert.Equal(t, types.RoleDiscussion, conflicts[0].Source)
	assert.Contains(t, conflicts[0].Detail, "57%")
}

func TestNumericCoverageFactsCountAsSource(t *testing.T) {
	facts := &types.StructuredFacts{Facts: []types.Fact{
		{Kind: types.FactFinding, Value: "accuracy fell 57% in the deprived group"},
	}}
	snap := snapWith(t, facts, map[types.Role]string{
		types.RoleMethods:    "We recruited participants.",
		types.RoleResults:    "Accuracy fell sharply.",
		types.RoleDiscussion: "The 57% drop is notable.",
	})
	assert.Empty(t, NumericCoverageChecker{}.Check(snap))
}

func TestNumericCoverageSkipsUnavailableSections(t *testing.T) {
	store := session.NewStore(&types.StructuredFacts{})
	require.NoError(t, store.Accept(types.NewContribution(types.RoleMethods, 1, "We recruited 48 participants.")))
	placeholder := types.NewContribution(types.RoleResults, 1, "[results section unavailable after repeated model failures]")
	placeholder.Unavailable = true
	require.NoError(t, store.Accept(placeholder))
	require.NoError(t, store.Accept(types.NewContribution(types.RoleDiscussion, 1, "The 57% drop is notable.")))

	conflicts := NumericCoverageChecker{}.Check(store.Snapshot(1))
	// The placeholder neither makes claims nor serves as a source; the
	// discussion figure is checked against methods and facts only.
	require.Len(t, conflicts, 1)
	assert.Equal(t, types.RoleMethods, conflicts[0].Role)
}

func TestNumericCoverageIgnoresSingleDigits(t *testing.T) {
	snap := snapWith(t, &types.StructuredFacts{}, map[types.Role]string{
		types.RoleMethods: "Participants completed a task battery.",
		types.RoleResults: "1. First finding. 2. Second finding.",
	})
	assert.Empty(t, NumericCoverageChecker{}.Check(snap))
}

func TestNumericCoverageOneConflictPerDependency(t *testing.T) {
	snap := snapWith(t, &types.StructuredFacts{}, map[types.Role]string{
		types.RoleMethods:    "We recruited participants.",
		types.RoleResults:    "Accuracy fell.",
		types.RoleDiscussion: "The 57% drop and the 33% rebound are notable.",
	})
	conflicts := NumericCoverageChecker{}.Check(snap)
	require.Len(t, conflicts, 1, "multiple uncovered figures collapse into one flag")
}

func TestCheckerFuncAdapter(t *testing.T) {
	called := false
	checker := CheckerFunc(func(*session.Snapshot) []Conflict {
		called = true
		return nil
	})
	assert.Nil(t, checker.Check(nil))
	assert.True(t, called)

	assert.Empty(t, NoopChecker().Check(nil))
}
