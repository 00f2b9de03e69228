package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
)

// PGRepo implements Repo using Postgres. Evidence spans live in a jsonb
// column; they round-trip through encoding/json so downstream consumers get
// structured spans back, not an opaque blob.
type PGRepo struct {
	DB *sql.DB
}

// BulkInsert inserts the assessments in one transaction.
func (r *PGRepo) BulkInsert(ctx context.Context, list []Assessment) error {
	if len(list) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO risk_assessments (id, agreement_id, rule_id, clause_id, flag_color, explanation, evidence, confidence, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, a := range list {
		evidencePayload, err := marshalEvidence(a.Evidence)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query,
			a.ID,
			a.AgreementID,
			a.RuleID,
			nullableString(a.ClauseID),
			a.FlagColor,
			a.Explanation,
			evidencePayload,
			a.Confidence,
			a.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByAgreement returns assessments ordered by creation time.
func (r *PGRepo) ListByAgreement(ctx context.Context, agreementID string) ([]Assessment, error) {
	const query = `
SELECT id, agreement_id, rule_id, clause_id, flag_color, explanation, evidence, confidence, created_at
FROM risk_assessments
WHERE agreement_id = $1
ORDER BY created_at, rule_id`
	rows, err := r.DB.QueryContext(ctx, query, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		var a Assessment
		var clauseID sql.NullString
		var evidenceRaw sql.NullString
		var confidence sql.NullFloat64
		if err := rows.Scan(
			&a.ID,
			&a.AgreementID,
			&a.RuleID,
			&clauseID,
			&a.FlagColor,
			&a.Explanation,
			&evidenceRaw,
			&confidence,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		if clauseID.Valid {
			a.ClauseID = clauseID.String
		}
		if confidence.Valid {
			v := confidence.Float64
			a.Confidence = &v
		}
		if evidenceRaw.Valid && evidenceRaw.String != "" {
			if err := json.Unmarshal([]byte(evidenceRaw.String), &a.Evidence); err != nil {
				return nil, err
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteByAgreement removes all assessments for the agreement.
func (r *PGRepo) DeleteByAgreement(ctx context.Context, agreementID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM risk_assessments WHERE agreement_id = $1`, agreementID)
	return err
}

func marshalEvidence(list []Evidence) (any, error) {
	if len(list) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
