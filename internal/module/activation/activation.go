// Package activation owns the per-tenant module activation lifecycle:
// one soft-deletable record per (tenant, module) pair.
package activation

import (
	"context"
	"time"

	"github.com/mesalabs/mesa/internal/ids"
)

// Record is the activation state of one (tenant, module) pair.
// DeactivatedAt is non-nil exactly when Status is inactive.
type Record struct {
	TenantID      ids.TenantID `json:"tenantId"`
	ModuleID      ids.ModuleID `json:"moduleId"`
	Status        string       `json:"status"`
	ActivatedAt   time.Time    `json:"activatedAt"`
	DeactivatedAt *time.Time   `json:"deactivatedAt"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Repository persists activation records. Implementations must make
// Enable and Disable atomic per (tenant, module) key: two concurrent
// enables converge on one record.
type Repository interface {
	// Enable creates the record as active, or flips an inactive record
	// back to active (clearing DeactivatedAt, refreshing ActivatedAt).
	// Enabling an already-active pair changes nothing.
	Enable(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID, now time.Time) error

	// Disable soft-deletes the record. Missing or already-inactive pairs
	// are a no-op.
	Disable(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID, now time.Time) error

	// Find returns the record for the pair, or nil when none exists.
	Find(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID) (*Record, error)

	// ListActive returns the tenant's records with Status active and a
	// nil DeactivatedAt.
	ListActive(ctx context.Context, tenantID ids.TenantID) ([]Record, error)
}
