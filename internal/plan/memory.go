package plan

import (
	"context"
	"sync"

	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/ids"
)

// MemoryRepository implements Repository in process memory.
type MemoryRepository struct {
	mu          sync.RWMutex
	plans       map[string]Plan
	assignments map[ids.TenantID]string
}

// NewMemoryRepository creates an empty in-memory plan repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		plans:       make(map[string]Plan),
		assignments: make(map[ids.TenantID]string),
	}
}

func (r *MemoryRepository) GetByID(ctx context.Context, planID string) (*Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.plans[planID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetBySlug(ctx context.Context, slug string) (*Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plans {
		if p.Slug == slug {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

func (r *MemoryRepository) Save(ctx context.Context, p *Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plans[p.ID] = *p
	return nil
}

func (r *MemoryRepository) GetAssignment(ctx context.Context, tenantID ids.TenantID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.assignments[tenantID], nil
}

func (r *MemoryRepository) SetAssignment(ctx context.Context, tenantID ids.TenantID, planID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assignments[tenantID] = planID
	return nil
}

// MemoryUsageStore implements UsageStore in process memory. The mutex
// makes check-and-increment atomic per store.
type MemoryUsageStore struct {
	mu       sync.Mutex
	counters map[usageKey]int64
}

type usageKey struct {
	tenant ids.TenantID
	key    string
}

// NewMemoryUsageStore creates an empty in-memory usage store.
func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{counters: make(map[usageKey]int64)}
}

func (s *MemoryUsageStore) IncrementWithLimit(ctx context.Context, tenantID ids.TenantID, key string, amount, limit int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := usageKey{tenant: tenantID, key: key}
	current := s.counters[k]
	if limit != Unlimited && current+amount > limit {
		return cnst.ErrPlanLimitExceeded
	}
	s.counters[k] = current + amount
	return nil
}

func (s *MemoryUsageStore) Get(ctx context.Context, tenantID ids.TenantID, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counters[usageKey{tenant: tenantID, key: key}], nil
}
