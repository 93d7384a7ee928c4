package module

import (
	"context"

	"github.com/mesalabs/mesa/internal/ids"
)

// Registry is the catalog of module definitions plus the per-tenant
// active set. Two interchangeable backends exist: an in-process one for
// single-node deployments and tests, and a database-backed one used by
// the activation service. Callers must not depend on the order of
// ListRegisteredModules; it varies between backends.
type Registry interface {
	// Register upserts a definition by id. Last write wins; there is no
	// merge and no version check.
	Register(ctx context.Context, def Definition) error

	// GetModuleDefinition returns the definition for the id, or nil when
	// the id was never registered.
	GetModuleDefinition(ctx context.Context, id ids.ModuleID) (*Definition, error)

	// ListRegisteredModules returns every registered definition.
	ListRegisteredModules(ctx context.Context) ([]Definition, error)

	// Resolve maps a canonical id or a human slug to the canonical id.
	// Returns cnst.ErrModuleNotFound when neither matches.
	Resolve(ctx context.Context, idOrSlug string) (ids.ModuleID, error)

	// ActivateModuleForTenant adds the module to the tenant's active set.
	// Returns cnst.ErrModuleNotFound when the module is unregistered.
	ActivateModuleForTenant(ctx context.Context, moduleID ids.ModuleID, tenantID ids.TenantID) error

	// DeactivateModuleForTenant removes the module from the tenant's
	// active set. Deactivating an inactive or unknown pair is a no-op.
	DeactivateModuleForTenant(ctx context.Context, moduleID ids.ModuleID, tenantID ids.TenantID) error

	// IsModuleActiveForTenant reports whether the pair is active.
	IsModuleActiveForTenant(ctx context.Context, moduleID ids.ModuleID, tenantID ids.TenantID) (bool, error)
}
