package types

// Role identifies which paper section an agent is responsible for.
type Role string

const (
	RoleLiterature Role = "literature"
	RoleMethods    Role = "methods"
	RoleResults    Role = "results"
	RoleDiscussion Role = "discussion"
	RoleConclusion Role = "conclusion"
)

// roleDependencies declares which other sections a role builds on.
// A role is only dispatched once every dependency has an accepted
// contribution in the session snapshot.
var roleDependencies = map[Role][]Role{
	RoleLiterature: {},
	RoleMethods:    {},
	RoleResults:    {RoleMethods},
	RoleDiscussion: {RoleMethods, RoleResults},
	RoleConclusion: {RoleMethods, RoleResults, RoleDiscussion},
}

// documentOrder is the order sections appear in the assembled paper.
var documentOrder = []Role{
	RoleLiterature,
	RoleMethods,
	RoleResults,
	RoleDiscussion,
	RoleConclusion,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleDependencies[r]
	return ok
}

// Dependencies returns the roles r depends on, in document order.
// The returned slice is a copy and safe to modify.
func (r Role) Dependencies() []Role {
	deps := roleDependencies[r]
	out := make([]Role, len(deps))
	copy(out, deps)
	return out
}

// DependsOn reports whether r declares a dependency on other.
func (r Role) DependsOn(other Role) bool {
	for _, d := range roleDependencies[r] {
		if d == other {
			return true
		}
	}
	return false
}

// CoreRoles returns the three-section role set: Methods, Results, Discussion.
func CoreRoles() []Role {
	return []Role{RoleMethods, RoleResults, RoleDiscussion}
}

// ExtendedRoles returns the full five-section role set, including the
// Literature survey and Conclusion sections.
func ExtendedRoles() []Role {
	out := make([]Role, len(documentOrder))
	copy(out, documentOrder)
	return out
}

// DocumentOrder filters roles down to the canonical section order used
// when assembling the final paper. Unknown roles are dropped.
func DocumentOrder(roles []Role) []Role {
	present := make(map[Role]bool, len(roles))
	for _, r := range roles {
		present[r] = true
	}
	out := make([]Role, 0, len(roles))
	for _, r := range documentOrder {
		if present[r] {
			out = append(out, r)
		}
	}
	return out
}
