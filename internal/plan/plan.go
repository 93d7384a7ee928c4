// Package plan maps tenants to subscription plans and enforces the
// numeric usage limits those plans carry.
package plan

import (
	"context"

	"github.com/mesalabs/mesa/internal/ids"
)

// Unlimited is the sentinel limit value meaning no cap is enforced. It
// short-circuits every comparison before any arithmetic happens.
const Unlimited int64 = -1

// Plan is a named bundle of allowed modules and numeric limits.
type Plan struct {
	ID      string           `json:"id"`
	Slug    string           `json:"slug"`
	Name    string           `json:"name"`
	Modules []ids.ModuleID   `json:"modules"`
	Limits  map[string]int64 `json:"limits"`
	Status  string           `json:"status"`
}

// HasModule reports whether the module is on the plan's allowlist.
func (p *Plan) HasModule(moduleID ids.ModuleID) bool {
	for _, m := range p.Modules {
		if m == moduleID {
			return true
		}
	}
	return false
}

// Limit returns the configured cap for the key, 0 when absent. Absent
// keys fail closed.
func (p *Plan) Limit(key string) int64 {
	if limit, ok := p.Limits[key]; ok {
		return limit
	}
	return 0
}

// Repository persists plans and tenant plan assignments.
type Repository interface {
	// GetByID returns the plan, or nil when the id is unknown.
	GetByID(ctx context.Context, planID string) (*Plan, error)
	// GetBySlug returns the plan, or nil when the slug is unknown.
	GetBySlug(ctx context.Context, slug string) (*Plan, error)
	// List returns every plan.
	List(ctx context.Context) ([]Plan, error)
	// Save upserts a plan by id.
	Save(ctx context.Context, p *Plan) error
	// GetAssignment returns the plan id assigned to the tenant, or ""
	// when the tenant has no explicit assignment.
	GetAssignment(ctx context.Context, tenantID ids.TenantID) (string, error)
	// SetAssignment assigns the plan to the tenant.
	SetAssignment(ctx context.Context, tenantID ids.TenantID, planID string) error
}

// UsageStore persists consumption counters. IncrementWithLimit is the
// single mutation path and must be atomic: the limit check and the
// increment happen as one operation per (tenant, key).
type UsageStore interface {
	// IncrementWithLimit adds amount to the counter unless the result
	// would exceed limit. limit == Unlimited skips the check. Returns
	// cnst.ErrPlanLimitExceeded on overshoot.
	IncrementWithLimit(ctx context.Context, tenantID ids.TenantID, key string, amount, limit int64) error
	// Get returns the accumulated usage for the key, 0 when untracked.
	Get(ctx context.Context, tenantID ids.TenantID, key string) (int64, error)
}
