package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContribution(t *testing.T) {
	c := NewContribution(RoleMethods, 1, "study design text")
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, RoleMethods, c.Role)
	assert.Equal(t, 1, c.Round)
	assert.Equal(t, StatusDraft, c.Status)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestContributionClone(t *testing.T) {
	c := NewContribution(RoleDiscussion, 2, "interpretation")
	c.References = []Role{RoleMethods, RoleResults}
	c.Claims = []string{"the effect was significant"}

	cp := c.Clone()
	cp.Status = StatusAccepted
	cp.References[0] = RoleConclusion
	cp.Claims[0] = "mutated"

	assert.Equal(t, StatusDraft, c.Status)
	assert.Equal(t, RoleMethods, c.References[0])
	assert.Equal(t, "the effect was significant", c.Claims[0])

	var nilC *Contribution
	assert.Nil(t, nilC.Clone())
}

func TestReferencesRole(t *testing.T) {
	c := NewContribution(RoleResults, 1, "findings")
	c.References = []Role{RoleMethods}
	assert.True(t, c.ReferencesRole(RoleMethods))
	assert.False(t, c.ReferencesRole(RoleDiscussion))
}
