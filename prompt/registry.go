// Package prompt holds the per-role prompt template registry. Templates
// are configuration data, not code: the registry is built once at
// startup and is immutable afterwards, so every agent of a role renders
// reproducible prompts for the whole session.
package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/avelkey/paperflow/llm"
	"github.com/avelkey/paperflow/types"
)

// Template is a role's prompt, with named {{slot}} placeholders in both
// segments.
type Template struct {
	System string `yaml:"system" json:"system"`
	User   string `yaml:"user" json:"user"`
}

var slotPattern = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// Slots returns the sorted set of slot names the template requires.
func (t Template) Slots() []string {
	seen := make(map[string]bool)
	for _, body := range []string{t.System, t.User} {
		for _, m := range slotPattern.FindAllStringSubmatch(body, -1) {
			seen[m[1]] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Registry maps roles to immutable templates.
type Registry struct {
	templates map[types.Role]Template
}

// NewRegistry builds a registry from the given templates. Roles must be
// valid and template bodies non-empty; there is no way to register more
// templates after construction.
func NewRegistry(templates map[types.Role]Template) (*Registry, error) {
	if len(templates) == 0 {
		return nil, types.NewError(types.ErrTemplate, "no templates registered")
	}
	owned := make(map[types.Role]Template, len(templates))
	for role, tpl := range templates {
		if !role.Valid() {
			return nil, types.NewError(types.ErrTemplate,
				fmt.Sprintf("unknown role %q", role))
		}
		if strings.TrimSpace(tpl.User) == "" {
			return nil, types.NewError(types.ErrTemplate,
				fmt.Sprintf("role %q has an empty user template", role)).WithRole(role)
		}
		owned[role] = tpl
	}
	return &Registry{templates: owned}, nil
}

// Roles returns the registered roles in document order.
func (r *Registry) Roles() []types.Role {
	roles := make([]types.Role, 0, len(r.templates))
	for role := range r.templates {
		roles = append(roles, role)
	}
	return types.DocumentOrder(roles)
}

// Has reports whether a template is registered for role.
func (r *Registry) Has(role types.Role) bool {
	_, ok := r.templates[role]
	return ok
}

// Render fills the role's template with the given slots and returns the
// prompt as chat messages. A missing slot or unregistered role fails
// with a TEMPLATE_ERROR.
func (r *Registry) Render(role types.Role, slots map[string]string) ([]llm.Message, error) {
	tpl, ok := r.templates[role]
	if !ok {
		return nil, types.NewError(types.ErrTemplate,
			fmt.Sprintf("no template registered for role %q", role)).WithRole(role)
	}

	var missing []string
	fill := func(body string) string {
		return slotPattern.ReplaceAllStringFunc(body, func(m string) string {
			name := slotPattern.FindStringSubmatch(m)[1]
			value, ok := slots[name]
			if !ok {
				missing = append(missing, name)
				return m
			}
			return value
		})
	}

	system := fill(tpl.System)
	user := fill(tpl.User)
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, types.NewError(types.ErrTemplate,
			fmt.Sprintf("role %q missing slots: %s", role, strings.Join(missing, ", "))).
			WithRole(role)
	}

	var messages []llm.Message
	if strings.TrimSpace(system) != "" {
		messages = append(messages, llm.Message{Role: llm.ChatRoleSystem, Content: system})
	}
	messages = append(messages, llm.Message{Role: llm.ChatRoleUser, Content: user})
	return messages, nil
}
