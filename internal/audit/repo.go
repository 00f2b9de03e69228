package audit

import "context"

// Repo defines persistence operations for audit trail entries.
type Repo interface {
	BulkInsert(ctx context.Context, entries []Entry) error
	ListByAgreement(ctx context.Context, agreementID string) ([]Entry, error)
	DeleteByAgreement(ctx context.Context, agreementID string) error
}
