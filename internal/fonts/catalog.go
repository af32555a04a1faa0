// Package fonts provides the static font catalog and the remote font
// resource loader.
package fonts

import "github.com/bnema/lacquer/internal/domain/entity"

// Choice is one selectable typeface for a role. Hosted choices name a remote
// family the Loader can fetch; local choices resolve entirely through the
// stack.
type Choice struct {
	ID    string
	Label string
	// Stack is the full font-family value applied to the surface.
	Stack string
	// Family is the hosted family name, empty for local-only choices.
	Family string
	// Weights are the hosted weights worth loading for this choice.
	Weights []int
}

// Hosted reports whether the choice references an externally-hosted family.
func (c Choice) Hosted() bool {
	return c.Family != ""
}

// Catalog entries per role. Static data; order is presentation order.
var (
	sansChoices = []Choice{
		{ID: "inter", Label: "Inter", Stack: `"Inter", "Noto Sans", sans-serif`, Family: "Inter", Weights: []int{400, 500, 700}},
		{ID: "fira-sans", Label: "Fira Sans", Stack: `"Fira Sans", "Noto Sans", sans-serif`, Family: "Fira Sans", Weights: []int{400, 700}},
		{ID: "system-sans", Label: "System Sans", Stack: `system-ui, "Noto Sans", sans-serif`},
	}

	serifChoices = []Choice{
		{ID: "lora", Label: "Lora", Stack: `"Lora", "Noto Serif", serif`, Family: "Lora", Weights: []int{400, 700}},
		{ID: "merriweather", Label: "Merriweather", Stack: `"Merriweather", "Noto Serif", serif`, Family: "Merriweather", Weights: []int{400, 700}},
		{ID: "system-serif", Label: "System Serif", Stack: `"Noto Serif", serif`},
	}

	monoChoices = []Choice{
		{ID: "jetbrains-mono", Label: "JetBrains Mono", Stack: `"JetBrains Mono", "Noto Sans Mono", monospace`, Family: "JetBrains Mono", Weights: []int{400, 700}},
		{ID: "fira-code", Label: "Fira Code", Stack: `"Fira Code", "Noto Sans Mono", monospace`, Family: "Fira Code", Weights: []int{400, 700}},
		{ID: "system-mono", Label: "System Mono", Stack: `ui-monospace, "Noto Sans Mono", monospace`},
	}
)

// ChoicesForRole returns the catalog entries for a role. The caller owns the
// returned slice.
func ChoicesForRole(role entity.FontRole) []Choice {
	var src []Choice
	switch role {
	case entity.FontRoleSerif:
		src = serifChoices
	case entity.FontRoleMono:
		src = monoChoices
	default:
		src = sansChoices
	}
	out := make([]Choice, len(src))
	copy(out, src)
	return out
}

// Lookup finds a choice by id across all roles.
func Lookup(id string) (Choice, bool) {
	for _, role := range []entity.FontRole{entity.FontRoleSans, entity.FontRoleSerif, entity.FontRoleMono} {
		for _, c := range ChoicesForRole(role) {
			if c.ID == id {
				return c, true
			}
		}
	}
	return Choice{}, false
}

// DefaultAssignment is the assignment used when a skin names no fonts.
func DefaultAssignment() entity.FontAssignment {
	return entity.FontAssignment{
		Sans:  "inter",
		Serif: "lora",
		Mono:  "jetbrains-mono",
	}
}

// RoleVariable maps a role to the style variable its stack is applied as.
func RoleVariable(role entity.FontRole) string {
	switch role {
	case entity.FontRoleSerif:
		return "--font-serif"
	case entity.FontRoleMono:
		return "--font-mono"
	default:
		return "--font-sans"
	}
}
