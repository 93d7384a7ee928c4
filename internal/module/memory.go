package module

import (
	"context"
	"sync"

	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/ids"
)

// MemoryRegistry implements Registry in process memory. State lives for
// the lifetime of the process; tests construct a fresh instance each.
type MemoryRegistry struct {
	mu sync.RWMutex

	definitions map[ids.ModuleID]Definition
	slugs       map[string]ids.ModuleID
	active      map[ids.TenantID]map[ids.ModuleID]struct{}
}

// NewMemoryRegistry creates an empty in-process registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		definitions: make(map[ids.ModuleID]Definition),
		slugs:       make(map[string]ids.ModuleID),
		active:      make(map[ids.TenantID]map[ids.ModuleID]struct{}),
	}
}

func (r *MemoryRegistry) Register(ctx context.Context, def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.definitions[def.ID]; ok && prev.Slug != "" {
		delete(r.slugs, prev.Slug)
	}
	r.definitions[def.ID] = def
	if def.Slug != "" {
		r.slugs[def.Slug] = def.ID
	}
	return nil
}

func (r *MemoryRegistry) GetModuleDefinition(ctx context.Context, id ids.ModuleID) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, ok := r.definitions[id]; ok {
		return &def, nil
	}
	return nil, nil
}

func (r *MemoryRegistry) ListRegisteredModules(ctx context.Context) ([]Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		out = append(out, def)
	}
	return out, nil
}

func (r *MemoryRegistry) Resolve(ctx context.Context, idOrSlug string) (ids.ModuleID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.definitions[ids.ModuleID(idOrSlug)]; ok {
		return ids.ModuleID(idOrSlug), nil
	}
	if id, ok := r.slugs[idOrSlug]; ok {
		return id, nil
	}
	return "", cnst.ErrModuleNotFound
}

func (r *MemoryRegistry) ActivateModuleForTenant(ctx context.Context, moduleID ids.ModuleID, tenantID ids.TenantID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.definitions[moduleID]; !ok {
		return cnst.ErrModuleNotFound
	}
	set, ok := r.active[tenantID]
	if !ok {
		set = make(map[ids.ModuleID]struct{})
		r.active[tenantID] = set
	}
	set[moduleID] = struct{}{}
	return nil
}

func (r *MemoryRegistry) DeactivateModuleForTenant(ctx context.Context, moduleID ids.ModuleID, tenantID ids.TenantID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.active[tenantID]; ok {
		delete(set, moduleID)
	}
	return nil
}

func (r *MemoryRegistry) IsModuleActiveForTenant(ctx context.Context, moduleID ids.ModuleID, tenantID ids.TenantID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.active[tenantID]
	if !ok {
		return false, nil
	}
	_, active := set[moduleID]
	return active, nil
}
