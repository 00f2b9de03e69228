package assessments

import "context"

// Repo defines persistence operations for risk assessments. A run replaces
// the agreement's assessment set wholesale: DeleteByAgreement then
// BulkInsert.
type Repo interface {
	BulkInsert(ctx context.Context, list []Assessment) error
	ListByAgreement(ctx context.Context, agreementID string) ([]Assessment, error)
	DeleteByAgreement(ctx context.Context, agreementID string) error
}
