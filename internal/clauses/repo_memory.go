package clauses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores clauses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu          sync.RWMutex
	byAgreement map[string][]Clause
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byAgreement: make(map[string][]Clause)}
}

// BulkInsert appends the clauses under their agreement.
func (r *MemoryRepo) BulkInsert(ctx context.Context, list []Clause) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, clause := range list {
		r.byAgreement[clause.AgreementID] = append(r.byAgreement[clause.AgreementID], clause)
	}
	return nil
}

// ListByAgreement returns clauses in document order.
func (r *MemoryRepo) ListByAgreement(ctx context.Context, agreementID string) ([]Clause, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.byAgreement[agreementID]
	out := make([]Clause, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// DeleteByAgreement removes all clauses for the agreement.
func (r *MemoryRepo) DeleteByAgreement(ctx context.Context, agreementID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byAgreement, agreementID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
