package agreements

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const agreementColumns = `id, title, full_text, status, overall_risk_score, source_key, analyzed_at, created_at, updated_at`

// Create inserts a new agreement.
func (r *PGRepo) Create(ctx context.Context, agreement Agreement) error {
	const query = `
INSERT INTO agreements (id, title, full_text, status, overall_risk_score, source_key, analyzed_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		agreement.ID,
		agreement.Title,
		agreement.FullText,
		agreement.Status,
		agreement.OverallRiskScore,
		nullableString(agreement.SourceKey),
		agreement.AnalyzedAt,
		agreement.CreatedAt,
		agreement.UpdatedAt,
	)
	return err
}

// GetByID returns an agreement by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Agreement, error) {
	const query = `SELECT ` + agreementColumns + ` FROM agreements WHERE id = $1 LIMIT 1`
	return scanAgreement(r.DB.QueryRowContext(ctx, query, id))
}

// List returns agreements newest-first with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Agreement, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + agreementColumns + ` FROM agreements ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Agreement
	for rows.Next() {
		agreement, err := scanAgreementRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, agreement)
	}
	return out, rows.Err()
}

// UpdateContent replaces title and text, resetting any prior analysis.
func (r *PGRepo) UpdateContent(ctx context.Context, agreement Agreement) error {
	const query = `
UPDATE agreements
SET title = $2, full_text = $3, status = $4, overall_risk_score = NULL, analyzed_at = NULL, updated_at = $5
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, agreement.ID, agreement.Title, agreement.FullText, StatusDraft, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes an agreement; clauses, assessments and audit entries go
// with it via ON DELETE CASCADE.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM agreements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// MarkAnalyzed records a completed run.
func (r *PGRepo) MarkAnalyzed(ctx context.Context, id, overallRiskScore string, analyzedAt time.Time) error {
	const query = `
UPDATE agreements
SET status = $2, overall_risk_score = $3, analyzed_at = $4, updated_at = $5
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, StatusAnalyzed, overallRiskScore, analyzedAt, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return err
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgreement(row *sql.Row) (Agreement, error) {
	agreement, err := scanAgreementRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Agreement{}, ErrNotFound
	}
	return agreement, err
}

func scanAgreementRow(row rowScanner) (Agreement, error) {
	var a Agreement
	var score sql.NullString
	var sourceKey sql.NullString
	var analyzedAt sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.FullText,
		&a.Status,
		&score,
		&sourceKey,
		&analyzedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return Agreement{}, err
	}
	if score.Valid {
		a.OverallRiskScore = &score.String
	}
	if sourceKey.Valid {
		a.SourceKey = sourceKey.String
	}
	if analyzedAt.Valid {
		t := analyzedAt.Time
		a.AnalyzedAt = &t
	}
	return a, nil
}

var _ Repo = (*PGRepo)(nil)
