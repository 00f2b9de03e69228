package audit

import (
	"context"
	"database/sql"
	"encoding/json"
)

// PGRepo implements Repo using Postgres. The structured payloads (input,
// output, extracted data, metadata) are stored as jsonb so they round-trip
// losslessly.
type PGRepo struct {
	DB *sql.DB
}

// BulkInsert inserts the entries in one transaction, preserving step order.
func (r *PGRepo) BulkInsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO audit_trail (id, agreement_id, step, step_order, rule_id, action, input, output, extracted_data, metadata, reasoning, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, e := range entries {
		input, err := marshalPayload(e.Input)
		if err != nil {
			return err
		}
		output, err := marshalPayload(e.Output)
		if err != nil {
			return err
		}
		extracted, err := marshalPayload(e.ExtractedData)
		if err != nil {
			return err
		}
		metadata, err := marshalPayload(e.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query,
			e.ID,
			e.AgreementID,
			e.Step,
			e.StepOrder,
			nullableString(e.RuleID),
			e.Action,
			input,
			output,
			extracted,
			metadata,
			nullableString(e.Reasoning),
			e.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByAgreement returns the trail ordered by step order.
func (r *PGRepo) ListByAgreement(ctx context.Context, agreementID string) ([]Entry, error) {
	const query = `
SELECT id, agreement_id, step, step_order, rule_id, action, input, output, extracted_data, metadata, reasoning, created_at
FROM audit_trail
WHERE agreement_id = $1
ORDER BY step_order`
	rows, err := r.DB.QueryContext(ctx, query, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ruleID, reasoning sql.NullString
		var input, output, extracted, metadata sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.AgreementID,
			&e.Step,
			&e.StepOrder,
			&ruleID,
			&e.Action,
			&input,
			&output,
			&extracted,
			&metadata,
			&reasoning,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.RuleID = ruleID.String
		e.Reasoning = reasoning.String
		if err := unmarshalPayload(input, &e.Input); err != nil {
			return nil, err
		}
		if err := unmarshalPayload(output, &e.Output); err != nil {
			return nil, err
		}
		if err := unmarshalPayload(extracted, &e.ExtractedData); err != nil {
			return nil, err
		}
		if err := unmarshalPayload(metadata, &e.Metadata); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteByAgreement removes the agreement's trail.
func (r *PGRepo) DeleteByAgreement(ctx context.Context, agreementID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM audit_trail WHERE agreement_id = $1`, agreementID)
	return err
}

func marshalPayload(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func unmarshalPayload(raw sql.NullString, dst *map[string]any) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw.String), dst)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
