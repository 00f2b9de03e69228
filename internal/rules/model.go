package rules

import (
	"strings"
	"time"
)

// Severity classifies how hard a rule violation blocks a deal.
const (
	SeverityShowStopper = "SHOW_STOPPER"
	SeverityNegotiable  = "NEGOTIABLE"
	SeverityCompliant   = "COMPLIANT"
)

// Rule is one checklist item agreements are evaluated against.
type Rule struct {
	ID                 string    `json:"id"`
	RuleID             string    `json:"ruleId"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	AcceptanceCriteria string    `json:"acceptanceCriteria"`
	Severity           string    `json:"severity"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ValidSeverity reports whether raw (after trimming and uppercasing) is one
// of the three severities, returning the canonical form.
func ValidSeverity(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case SeverityShowStopper:
		return SeverityShowStopper, true
	case SeverityNegotiable:
		return SeverityNegotiable, true
	case SeverityCompliant:
		return SeverityCompliant, true
	default:
		return "", false
	}
}
