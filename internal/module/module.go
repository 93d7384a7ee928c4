// Package module holds the catalog of pluggable feature modules and the
// per-tenant record of which ones are active.
package module

import (
	"github.com/mesalabs/mesa/internal/ids"
)

// Permission describes one permission a module contributes, with the
// metadata admin UIs display next to it.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Definition is the immutable description a module registers for itself
// at process start. The registry holds at most one definition per id;
// re-registering the same id overwrites the previous definition wholesale.
type Definition struct {
	ID           ids.ModuleID `json:"id"`
	Slug         string       `json:"slug,omitempty"`
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Permissions  []Permission `json:"permissions,omitempty"`
	EventTypes   []string     `json:"eventTypes,omitempty"`
	RequiredPlan string       `json:"requiredPlan,omitempty"`
}

// PermissionIDs returns the ids of the definition's permission set.
func (d *Definition) PermissionIDs() []string {
	out := make([]string, 0, len(d.Permissions))
	for _, p := range d.Permissions {
		out = append(out, p.ID)
	}
	return out
}
