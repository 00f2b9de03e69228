package assessments

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores assessments in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu          sync.RWMutex
	byAgreement map[string][]Assessment
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byAgreement: make(map[string][]Assessment)}
}

// BulkInsert appends the assessments under their agreement.
func (r *MemoryRepo) BulkInsert(ctx context.Context, list []Assessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range list {
		copied := a
		copied.Evidence = append([]Evidence(nil), a.Evidence...)
		r.byAgreement[a.AgreementID] = append(r.byAgreement[a.AgreementID], copied)
	}
	return nil
}

// ListByAgreement returns assessments ordered by creation time then rule.
func (r *MemoryRepo) ListByAgreement(ctx context.Context, agreementID string) ([]Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.byAgreement[agreementID]
	out := make([]Assessment, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out, nil
}

// DeleteByAgreement removes all assessments for the agreement.
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
