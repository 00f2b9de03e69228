package agreements

import (
	"context"
	"time"
)

// Repo defines persistence operations for agreements.
type Repo interface {
	Create(ctx context.Context, agreement Agreement) error
	GetByID(ctx context.Context, id string) (Agreement, error)
	List(ctx context.Context, limit, offset int) ([]Agreement, error)
	UpdateContent(ctx context.Context, agreement Agreement) error
	Delete(ctx context.Context, id string) error
	// MarkAnalyzed records a completed run: status analyzed, overall score
	// and the run's completion time, in one statement.
	MarkAnalyzed(ctx context.Context, id, overallRiskScore string, analyzedAt time.Time) error
}
