package clauses

import "context"

// Repo defines persistence operations for clauses.
type Repo interface {
	BulkInsert(ctx context.Context, list []Clause) error
	ListByAgreement(ctx context.Context, agreementID string) ([]Clause, error)
	DeleteByAgreement(ctx context.Context, agreementID string) error
}
