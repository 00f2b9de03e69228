package audit

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo used by tests and memory-store mode.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{entries: make(map[string][]Entry)}
}

func (r *MemoryRepo) BulkInsert(_ context.Context, entries []Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.AgreementID] = append(r.entries[e.AgreementID], e)
	}
	return nil
}

func (r *MemoryRepo) ListByAgreement(_ context.Context, agreementID string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries[agreementID]))
	copy(out, r.entries[agreementID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].StepOrder < out[j].StepOrder })
	return out, nil
}

func (r *MemoryRepo) DeleteByAgreement(_ context.Context, agreementID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, agreementID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
