// Package ids defines the opaque identifier types shared across the
// control plane. Each kind is a distinct string type so that a tenant id
// can never be passed where a module id is expected.
package ids

// TenantID identifies a customer organization. All module, plan and
// usage state is scoped by it.
type TenantID string

// UserID identifies a user account, either a platform admin or a
// tenant-scoped user.
type UserID string

// ModuleID identifies a pluggable feature module. Persistent lookups
// additionally accept a human slug as an alternate key; resolution back
// to the canonical id happens in the registry, never by string coercion.
type ModuleID string

func (t TenantID) String() string { return string(t) }

func (u UserID) String() string { return string(u) }

func (m ModuleID) String() string { return string(m) }

// IsZero reports whether the tenant id is unset.
func (t TenantID) IsZero() bool { return t == "" }

// IsZero reports whether the module id is unset.
func (m ModuleID) IsZero() bool { return m == "" }
