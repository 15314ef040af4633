package prompt

import "github.com/avelkey/paperflow/types"

// Default templates for the paper-writing roles. Each user template
// takes the same slots (topic, facts, prior_sections, task) so agents
// can render proposals and revisions with one template per role.

const defaultSystem = "You are a scientific writing assistant specialized in the " +
	"{{section}} section of research papers. Write in a clear, academic style " +
	"suitable for publication. Ground every statement in the supplied material; " +
	"never invent data, citations, or results."

var sectionInstructions = map[types.Role]string{
	types.RoleLiterature: "Survey prior work relevant to the topic. Position the present " +
		"study against it and identify the gap it addresses.",
	types.RoleMethods: "The methods section should cover: 1. Study Design " +
		"2. Data Collection 3. Analysis Methods 4. Statistical Methods " +
		"5. Ethical Considerations.",
	types.RoleResults: "Report the findings supported by the provided data summaries. " +
		"State effect sizes and statistics exactly as given; do not interpret them.",
	types.RoleDiscussion: "Interpret the results in context: implications, comparison " +
		"with prior work, limitations, and future directions. Only discuss claims " +
		"actually made in the results section.",
	types.RoleConclusion: "Summarize the contribution in a short closing section, " +
		"restating the key findings without introducing new material.",
}

const defaultUser = `{{instructions}}

Research Topic: {{topic}}

Structured facts extracted from the source material:
{{facts}}

Previously written sections of the paper:
{{prior_sections}}

Task: {{task}}`

// DefaultTemplates returns the built-in template set for the given roles.
func DefaultTemplates(roles []types.Role) map[types.Role]Template {
	out := make(map[types.Role]Template, len(roles))
	for _, role := range roles {
		out[role] = Template{
			System: defaultSystem,
			User:   defaultUser,
		}
	}
	return out
}

// SectionInstructions returns the per-role writing instructions used to
// fill the {{instructions}} slot.
func SectionInstructions(role types.Role) string {
	return sectionInstructions[role]
}

// DefaultRegistry builds a registry holding the built-in templates for
// every known role.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(DefaultTemplates(types.ExtendedRoles()))
	if err != nil {
		// Built-in templates are statically valid.
		panic(err)
	}
	return reg
}
