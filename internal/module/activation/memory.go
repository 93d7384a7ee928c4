package activation

import (
	"context"
	"sync"
	"time"

	"github.com/mesalabs/mesa/internal/ids"
)

// MemoryRepository implements Repository in process memory.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[ids.TenantID]map[ids.ModuleID]*Record
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[ids.TenantID]map[ids.ModuleID]*Record),
	}
}

func (r *MemoryRepository) Enable(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byModule, ok := r.records[tenantID]
	if !ok {
		byModule = make(map[ids.ModuleID]*Record)
		r.records[tenantID] = byModule
	}

	rec, ok := byModule[moduleID]
	if !ok {
		byModule[moduleID] = &Record{
			TenantID:    tenantID,
			ModuleID:    moduleID,
			Status:      StatusActive,
			ActivatedAt: now,
		}
		return nil
	}
	if rec.Status == StatusInactive {
		rec.Status = StatusActive
		rec.ActivatedAt = now
		rec.DeactivatedAt = nil
	}
	return nil
}

func (r *MemoryRepository) Disable(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[tenantID][moduleID]
	if !ok || rec.Status == StatusInactive {
		return nil
	}
	deactivatedAt := now
	rec.Status = StatusInactive
	rec.DeactivatedAt = &deactivatedAt
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[tenantID][moduleID]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (r *MemoryRepository) ListActive(ctx context.Context, tenantID ids.TenantID) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Record
	for _, rec := range r.records[tenantID] {
		if rec.Status == StatusActive && rec.DeactivatedAt == nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}
