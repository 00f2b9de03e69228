package clauses

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// BulkInsert inserts the clauses in one transaction.
func (r *PGRepo) BulkInsert(ctx context.Context, list []Clause) error {
	if len(list) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO clauses (id, agreement_id, position, clause_number, title, content, start_offset, end_offset, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, clause := range list {
		if _, err := tx.ExecContext(ctx, query,
			clause.ID,
			clause.AgreementID,
			clause.Position,
			nullableString(clause.ClauseNumber),
			nullableString(clause.Title),
			clause.Content,
			clause.StartOffset,
			clause.EndOffset,
			clause.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByAgreement returns clauses in document order.
func (r *PGRepo) ListByAgreement(ctx context.Context, agreementID string) ([]Clause, error) {
	const query = `
SELECT id, agreement_id, position, clause_number, title, content, start_offset, end_offset, created_at
FROM clauses
WHERE agreement_id = $1
ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, query, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Clause
	for rows.Next() {
		var clause Clause
		var number sql.NullString
		var title sql.NullString
		var start sql.NullInt64
		var end sql.NullInt64
		if err := rows.Scan(
			&clause.ID,
			&clause.AgreementID,
			&clause.Position,
			&number,
			&title,
			&clause.Content,
			&start,
			&end,
			&clause.CreatedAt,
		); err != nil {
			return nil, err
		}
		if number.Valid {
			clause.ClauseNumber = number.String
		}
		if title.Valid {
			clause.Title = title.String
		}
		if start.Valid {
			v := int(start.Int64)
			clause.StartOffset = &v
		}
		if end.Valid {
			v := int(end.Int64)
			clause.EndOffset = &v
		}
		out = append(out, clause)
	}
	return out, rows.Err()
}

// DeleteByAgreement removes all clauses for the agreement.
func (r *PGRepo) DeleteByAgreement(ctx context.Context, agreementID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM clauses WHERE agreement_id = $1`, agreementID)
	return err
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
