package rules

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const ruleColumns = `id, rule_id, name, description, acceptance_criteria, severity, is_active, created_at, updated_at`

// Create inserts a new rule.
func (r *PGRepo) Create(ctx context.Context, rule Rule) error {
	const query = `
INSERT INTO policy_rules (id, rule_id, name, description, acceptance_criteria, severity, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		rule.ID,
		rule.RuleID,
		rule.Name,
		rule.Description,
		rule.AcceptanceCriteria,
		rule.Severity,
		rule.IsActive,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

// Update replaces the mutable fields of an existing rule.
func (r *PGRepo) Update(ctx context.Context, rule Rule) error {
	const query = `
UPDATE policy_rules
SET name = $2, description = $3, acceptance_criteria = $4, severity = $5, is_active = $6, updated_at = $7
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		rule.ID,
		rule.Name,
		rule.Description,
		rule.AcceptanceCriteria,
		rule.Severity,
		rule.IsActive,
		rule.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return err
}

// GetByID returns a rule by storage key.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Rule, error) {
	const query = `SELECT ` + ruleColumns + ` FROM policy_rules WHERE id = $1 LIMIT 1`
	return scanRule(r.DB.QueryRowContext(ctx, query, id))
}

// GetByRuleID returns a rule by its stable string identifier.
func (r *PGRepo) GetByRuleID(ctx context.Context, ruleID string) (Rule, error) {
	const query = `SELECT ` + ruleColumns + ` FROM policy_rules WHERE rule_id = $1 LIMIT 1`
	return scanRule(r.DB.QueryRowContext(ctx, query, ruleID))
}

// List returns all rules ordered by rule identifier.
func (r *PGRepo) List(ctx context.Context) ([]Rule, error) {
	const query = `SELECT ` + ruleColumns + ` FROM policy_rules ORDER BY rule_id`
	return r.queryRules(ctx, query)
}

// ListActive returns the currently active rule set ordered by rule identifier.
func (r *PGRepo) ListActive(ctx context.Context) ([]Rule, error) {
	const query = `SELECT ` + ruleColumns + ` FROM policy_rules WHERE is_active = TRUE ORDER BY rule_id`
	return r.queryRules(ctx, query)
}

func (r *PGRepo) queryRules(ctx context.Context, query string, args ...any) ([]Rule, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(
			&rule.ID,
			&rule.RuleID,
			&rule.Name,
			&rule.Description,
			&rule.AcceptanceCriteria,
			&rule.Severity,
			&rule.IsActive,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func scanRule(row *sql.Row) (Rule, error) {
	var rule Rule
	err := row.Scan(
		&rule.ID,
		&rule.RuleID,
		&rule.Name,
		&rule.Description,
		&rule.AcceptanceCriteria,
		&rule.Severity,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Rule{}, ErrNotFound
	}
	if err != nil {
		return Rule{}, err
	}
	return rule, nil
}

var _ Repo = (*PGRepo)(nil)
