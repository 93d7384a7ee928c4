package plan

import (
	"context"

	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/ids"
)

// BaselineSlug is the plan every tenant falls back to when no explicit
// assignment exists.
const BaselineSlug = "plan_free"

// Ledger answers plan and limit questions for tenants. A tenant without
// an explicit assignment is treated as being on the baseline plan; only
// when the baseline itself is missing (seed never ran) do tenant
// operations report cnst.ErrTenantHasNoPlan.
type Ledger struct {
	plans Repository
	usage UsageStore
}

// NewLedger creates a ledger over the given repositories.
func NewLedger(plans Repository, usage UsageStore) *Ledger {
	return &Ledger{plans: plans, usage: usage}
}

// GetPlanByID returns the plan, or nil when unknown.
func (l *Ledger) GetPlanByID(ctx context.Context, planID string) (*Plan, error) {
	return l.plans.GetByID(ctx, planID)
}

// SavePlan creates or replaces a plan. Last write wins by id.
func (l *Ledger) SavePlan(ctx context.Context, p *Plan) error {
	return l.plans.Save(ctx, p)
}

// ListAllPlans returns every registered plan.
func (l *Ledger) ListAllPlans(ctx context.Context) ([]Plan, error) {
	return l.plans.List(ctx)
}

// CheckModuleInPlan reports whether the plan's allowlist carries the
// module. Unknown plans have no modules.
func (l *Ledger) CheckModuleInPlan(ctx context.Context, planID string, moduleID ids.ModuleID) (bool, error) {
	p, err := l.plans.GetByID(ctx, planID)
	if err != nil || p == nil {
		return false, err
	}
	return p.HasModule(moduleID), nil
}

// CheckPlanLimit returns the configured cap for the key on the plan.
// Unknown plans and absent keys yield 0: fail closed, not open.
func (l *Ledger) CheckPlanLimit(ctx context.Context, planID string, key string) (int64, error) {
	p, err := l.plans.GetByID(ctx, planID)
	if err != nil || p == nil {
		return 0, err
	}
	return p.Limit(key), nil
}

// GetTenantPlan returns the tenant's assigned plan, falling back to the
// baseline plan. Returns nil only when neither exists.
func (l *Ledger) GetTenantPlan(ctx context.Context, tenantID ids.TenantID) (*Plan, error) {
	planID, err := l.plans.GetAssignment(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if planID != "" {
		p, err := l.plans.GetByID(ctx, planID)
		if err != nil || p != nil {
			return p, err
		}
		// Assignment points at a deleted plan; fall through to baseline.
	}
	return l.plans.GetBySlug(ctx, BaselineSlug)
}

// ChangeTenantPlan assigns a new plan to the tenant. Fails with
// cnst.ErrPlanNotFound when the plan id is unknown.
func (l *Ledger) ChangeTenantPlan(ctx context.Context, tenantID ids.TenantID, planID string) error {
	p, err := l.plans.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if p == nil {
		return cnst.ErrPlanNotFound
	}
	return l.plans.SetAssignment(ctx, tenantID, planID)
}

// CheckTenantHasModule reports whether the tenant's plan allows the
// module. A tenant with no plan has no modules.
func (l *Ledger) CheckTenantHasModule(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID) (bool, error) {
	p, err := l.GetTenantPlan(ctx, tenantID)
	if err != nil || p == nil {
		return false, err
	}
	return p.HasModule(moduleID), nil
}

// CheckTenantLimit returns the cap configured for the tenant's plan, 0
// when no plan or key exists.
func (l *Ledger) CheckTenantLimit(ctx context.Context, tenantID ids.TenantID, key string) (int64, error) {
	p, err := l.GetTenantPlan(ctx, tenantID)
	if err != nil || p == nil {
		return 0, err
	}
	return p.Limit(key), nil
}

// GetTenantUsage returns the accumulated usage for the key.
func (l *Ledger) GetTenantUsage(ctx context.Context, tenantID ids.TenantID, key string) (int64, error) {
	return l.usage.Get(ctx, tenantID, key)
}

// IncrementTenantUsage is the single enforcement point for consumption.
// The limit check and the counter update are one atomic operation, so
// concurrent increments cannot push usage past a finite limit.
func (l *Ledger) IncrementTenantUsage(ctx context.Context, tenantID ids.TenantID, key string, amount int64) error {
	if amount <= 0 {
		return cnst.ErrInvalidAmount
	}
	p, err := l.GetTenantPlan(ctx, tenantID)
	if err != nil {
		return err
	}
	if p == nil {
		return cnst.ErrTenantHasNoPlan
	}
	return l.usage.IncrementWithLimit(ctx, tenantID, key, amount, p.Limit(key))
}
