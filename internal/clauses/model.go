package clauses

import "time"

// Clause is a contiguous, named segment of an agreement's text. Clauses are
// created once per extraction and never mutated; when offsets are present,
// Content equals the agreement text between them.
type Clause struct {
	ID           string    `json:"id"`
	AgreementID  string    `json:"agreementId"`
	Position     int       `json:"position"`
	ClauseNumber string    `json:"clauseNumber,omitempty"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content"`
	StartOffset  *int      `json:"startOffset,omitempty"`
	EndOffset    *int      `json:"endOffset,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
