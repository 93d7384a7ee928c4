package activation

import (
	"context"
	"errors"
	"time"

	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/ids"
	"github.com/mesalabs/mesa/internal/module"
)

// Service orchestrates enabling and disabling modules for tenants.
// Enable is the only operation that can fail on bad input: the module
// must be registered. Everything else degrades to no-ops or empty
// results so tenant UIs stay resilient to stale module references.
type Service struct {
	registry module.Registry
	repo     Repository
	now      func() time.Time
}

// NewService creates an activation service over the given registry and
// repository.
func NewService(registry module.Registry, repo Repository) *Service {
	return &Service{
		registry: registry,
		repo:     repo,
		now:      time.Now,
	}
}

// Enable activates the module for the tenant. The registry lookup is a
// mandatory guard: enabling a module that was never registered fails
// with cnst.ErrModuleNotRegistered. Enable is idempotent.
func (s *Service) Enable(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID) error {
	def, err := s.registry.GetModuleDefinition(ctx, moduleID)
	if err != nil {
		return err
	}
	if def == nil {
		return cnst.ErrModuleNotRegistered
	}
	return s.repo.Enable(ctx, tenantID, moduleID, s.now())
}

// Disable soft-deletes the activation. Unknown module references and
// missing records are no-ops, not errors.
func (s *Service) Disable(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID) error {
	canonical, err := s.registry.Resolve(ctx, moduleID.String())
	if errors.Is(err, cnst.ErrModuleNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.repo.Disable(ctx, tenantID, canonical, s.now())
}

// IsEnabled reports whether the pair has an active, non-deactivated
// record. Both conditions are checked to guard against partially
// updated rows.
func (s *Service) IsEnabled(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID) (bool, error) {
	canonical, err := s.registry.Resolve(ctx, moduleID.String())
	if errors.Is(err, cnst.ErrModuleNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	rec, err := s.repo.Find(ctx, tenantID, canonical)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Status == StatusActive && rec.DeactivatedAt == nil, nil
}

// ListEnabled returns the canonical ids of the tenant's active modules.
func (s *Service) ListEnabled(ctx context.Context, tenantID ids.TenantID) ([]ids.ModuleID, error) {
	records, err := s.repo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]ids.ModuleID, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ModuleID)
	}
	return out, nil
}

// ListEnabledWithDetails returns the tenant's active records with their
// timestamps, for admin UIs.
func (s *Service) ListEnabledWithDetails(ctx context.Context, tenantID ids.TenantID) ([]Record, error) {
	return s.repo.ListActive(ctx, tenantID)
}
