package rules

import "context"

// Repo defines persistence operations for policy rules.
type Repo interface {
	Create(ctx context.Context, rule Rule) error
	Update(ctx context.Context, rule Rule) error
	GetByID(ctx context.Context, id string) (Rule, error)
	GetByRuleID(ctx context.Context, ruleID string) (Rule, error)
	List(ctx context.Context) ([]Rule, error)
	ListActive(ctx context.Context) ([]Rule, error)
}
