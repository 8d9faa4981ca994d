package facts

import (
	"context"
	"sync"
)

// MemoryRepo stores case facts in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byCase map[string]CaseFacts
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byCase: make(map[string]CaseFacts)}
}

// GetByCaseID returns the extraction output for a case.
func (r *MemoryRepo) GetByCaseID(ctx context.Context, caseID string) (CaseFacts, error) {
	if err := ctx.Err(); err != nil {
		return CaseFacts{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cf, ok := r.byCase[caseID]
	if !ok {
		return CaseFacts{}, ErrNotFound
	}
	return cf, nil
}

// Put stores extraction output, replacing any prior version.
func (r *MemoryRepo) Put(ctx context.Context, cf CaseFacts) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCase[cf.CaseID] = cf
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
