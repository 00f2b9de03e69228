package agreements

import "time"

// Lifecycle status of an agreement. AnalyzedAt is set if and only if the
// status is analyzed.
const (
	StatusDraft    = "draft"
	StatusAnalyzed = "analyzed"
)

// Agreement is a document under review.
type Agreement struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	FullText         string     `json:"fullText"`
	Status           string     `json:"status"`
	OverallRiskScore *string    `json:"overallRiskScore,omitempty"`
	SourceKey        string     `json:"-"`
	AnalyzedAt       *time.Time `json:"analyzedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
