package audit

import "time"

// Step kinds recorded during an analysis run.
const (
	StepExtraction     = "extraction"
	StepRuleEvaluation = "rule_evaluation"
	StepValidation     = "validation"
	StepDecision       = "decision"
)

// Entry is one recorded step of a single analysis run. Entries are
// append-only; the prior run's entries are deleted before a new run begins,
// so the trail always reflects the most recent run.
type Entry struct {
	ID            string         `json:"id"`
	AgreementID   string         `json:"agreementId"`
	Step          string         `json:"step"`
	StepOrder     int            `json:"stepOrder"`
	RuleID        string         `json:"ruleId,omitempty"`
	Action        string         `json:"action"`
	Input         map[string]any `json:"input,omitempty"`
	Output        map[string]any `json:"output,omitempty"`
	ExtractedData map[string]any `json:"extractedData,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Reasoning     string         `json:"reasoning,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}
