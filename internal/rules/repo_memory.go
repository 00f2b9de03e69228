package rules

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores rules in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Rule
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Rule)}
}

// Create stores the rule, rejecting duplicate rule identifiers.
func (r *MemoryRepo) Create(ctx context.Context, rule Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.RuleID == rule.RuleID {
			return ErrDuplicate
		}
	}
	r.byID[rule.ID] = rule
	return nil
}

// Update replaces an existing rule.
func (r *MemoryRepo) Update(ctx context.Context, rule Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rule.ID]; !ok {
		return ErrNotFound
	}
	r.byID[rule.ID] = rule
	return nil
}

// GetByID returns a rule by storage key.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Rule, error) {
	if err := ctx.Err(); err != nil {
		return Rule{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.byID[id]
	if !ok {
		return Rule{}, ErrNotFound
	}
	return rule, nil
}

// GetByRuleID returns a rule by its stable string identifier.
func (r *MemoryRepo) GetByRuleID(ctx context.Context, ruleID string) (Rule, error) {
	if err := ctx.Err(); err != nil {
		return Rule{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.byID {
		if rule.RuleID == ruleID {
			return rule, nil
		}
	}
	return Rule{}, ErrNotFound
}

// List returns all rules ordered by rule identifier.
func (r *MemoryRepo) List(ctx context.Context) ([]Rule, error) {
	return r.list(ctx, false)
}

// ListActive returns the currently active rule set ordered by rule identifier.
func (r *MemoryRepo) ListActive(ctx context.Context) ([]Rule, error) {
	return r.list(ctx, true)
}

func (r *MemoryRepo) list(ctx context.Context, activeOnly bool) ([]Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, 0, len(r.byID))
	for _, rule := range r.byID {
		if activeOnly && !rule.IsActive {
			continue
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
