package agreements

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores agreements in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Agreement
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Agreement)}
}

// Create stores the agreement.
func (r *MemoryRepo) Create(ctx context.Context, agreement Agreement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[agreement.ID] = agreement
	return nil
}

// GetByID returns an agreement by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Agreement, error) {
	if err := ctx.Err(); err != nil {
		return Agreement{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	agreement, ok := r.byID[id]
	if !ok {
		return Agreement{}, ErrNotFound
	}
	return agreement, nil
}

// List returns agreements newest-first with limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Agreement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	out := make([]Agreement, 0, len(r.byID))
	for _, agreement := range r.byID {
		out = append(out, agreement)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []Agreement{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// UpdateContent replaces title and text, resetting any prior analysis.
func (r *MemoryRepo) UpdateContent(ctx context.Context, agreement Agreement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[agreement.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = agreement.Title
	existing.FullText = agreement.FullText
	existing.Status = StatusDraft
	existing.OverallRiskScore = nil
	existing.AnalyzedAt = nil
	existing.UpdatedAt = time.Now().UTC()
	r.byID[agreement.ID] = existing
	return nil
}

// Delete removes an agreement.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// MarkAnalyzed records a completed run.
func (r *MemoryRepo) MarkAnalyzed(ctx context.Context, id, overallRiskScore string, analyzedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	agreement, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	agreement.Status = StatusAnalyzed
	agreement.OverallRiskScore = &overallRiskScore
	at := analyzedAt
	agreement.AnalyzedAt = &at
	agreement.UpdatedAt = time.Now().UTC()
	r.byID[id] = agreement
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
