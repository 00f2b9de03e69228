package llm

import (
	"fmt"
	"strings"
)

// RuleInput is the slice of a policy rule the prompts need.
type RuleInput struct {
	RuleID             string
	Name               string
	Description        string
	AcceptanceCriteria string
	Severity           string
}

const analystSystem = "You are a legal compliance analyst reviewing commercial agreements against an internal policy checklist. Answer with JSON only."

const parserSystem = "You are a legal document parser. Answer with JSON only, no markdown formatting."

// ExtractionPrompt asks for a segmentation of the agreement into clauses.
func ExtractionPrompt(agreementText string) Request {
	prompt := fmt.Sprintf(`Extract all distinct clauses from the following agreement text.
Return a JSON object {"clauses": [...]} where each clause has:
- clauseNumber (optional): section number or identifier like "3.2" or "Section A"
- title (optional): clause heading or title
- content: the full text of the clause

Be thorough and extract all meaningful clauses, in document order.

Agreement text:
%s`, agreementText)
	return Request{
		Task:   "clause_extraction",
		System: parserSystem,
		Prompt: prompt,
	}
}

// ChecklistPrompt asks for one verdict per rule over the whole text.
func ChecklistPrompt(agreementText string, rules []RuleInput) Request {
	prompt := fmt.Sprintf(`Review the following agreement against the policy checklist below.

Agreement Text:
%s

Policy Checklist:
%s

Analyze the agreement against each policy rule. For each rule:
1. Determine if it is GREEN (compliant), YELLOW (needs review), or RED (show-stopper)
2. Provide a clear explanation of your assessment
3. Quote the exact text from the agreement that supports your assessment (if applicable), with its character offset

%s

Return a JSON object {"results": [...], "overallRiskScore": "..."} with exactly one result per rule, each carrying ruleId, flagColor, explanation, matched, optional evidence array and confidence.`,
		agreementText, formatRules(rules), flagGuidelines)
	return Request{
		Task:   "checklist_evaluation",
		System: analystSystem,
		Prompt: prompt,
	}
}

// RulePrompt asks for a single verdict on one rule against one text unit.
func RulePrompt(text string, rule RuleInput) Request {
	prompt := fmt.Sprintf(`Evaluate the following text against one policy rule.

Text:
%s

Rule: %s (%s)
Description: %s
Acceptance Criteria: %s
Severity: %s

Determine if the text is GREEN (compliant), YELLOW (needs review), or RED (show-stopper) with respect to this rule, whether the rule matched anything in the text, a clear explanation, quoted evidence with character offsets where applicable, and a confidence between 0 and 1.

%s

Return a JSON object with flagColor, matched, explanation, evidence (array of {text, startOffset, endOffset}) and confidence.`,
		text, rule.Name, rule.RuleID, rule.Description, rule.AcceptanceCriteria, rule.Severity, flagGuidelines)
	return Request{
		Task:   "rule_evaluation",
		System: analystSystem,
		Prompt: prompt,
	}
}

const flagGuidelines = `Flag Color Guidelines:
- GREEN: Rule is fully compliant, no issues
- YELLOW: Potential concerns, review recommended, but may be acceptable
- RED: Clear violation or high risk, show-stopper, requires escalation`

func formatRules(rules []RuleInput) string {
	var b strings.Builder
	for i, rule := range rules {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n   Description: %s\n   Acceptance Criteria: %s\n   Severity: %s",
			i+1, rule.Name, rule.RuleID, rule.Description, rule.AcceptanceCriteria, rule.Severity)
	}
	return b.String()
}
