package analysis

import (
	"context"
	"fmt"

	"contractreview-backend/internal/assessments"
	"contractreview-backend/internal/evidence"
	"contractreview-backend/internal/llm"
	"contractreview-backend/internal/rules"
)

var verdictShape = llm.MustShape("rule_verdict", `{
	"type": "object",
	"required": ["flagColor", "matched", "explanation"],
	"properties": {
		"flagColor": {"type": "string"},
		"matched": {"type": "boolean"},
		"explanation": {"type": "string"},
		"evidence": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["text"],
				"properties": {
					"text": {"type": "string"},
					"startOffset": {"type": "integer"},
					"endOffset": {"type": "integer"}
				}
			}
		},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`)

var checklistShape = llm.MustShape("checklist_evaluation", `{
	"type": "object",
	"required": ["results"],
	"properties": {
		"results": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["ruleId", "flagColor", "explanation"],
				"properties": {
					"ruleId": {"type": "string"},
					"flagColor": {"type": "string"},
					"matched": {"type": "boolean"},
					"explanation": {"type": "string"},
					"evidence": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["text"],
							"properties": {
								"text": {"type": "string"},
								"startOffset": {"type": "integer"},
								"endOffset": {"type": "integer"}
							}
						}
					},
					"confidence": {"type": "number", "minimum": 0, "maximum": 1}
				}
			}
		},
		"overallRiskScore": {"type": "string"}
	}
}`)

type rawEvidence struct {
	Text        string `json:"text"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
}

type rawVerdict struct {
	RuleID      string        `json:"ruleId"`
	FlagColor   string        `json:"flagColor"`
	Matched     bool          `json:"matched"`
	Explanation string        `json:"explanation"`
	Evidence    []rawEvidence `json:"evidence"`
	Confidence  *float64      `json:"confidence"`
}

type rawChecklist struct {
	Results          []rawVerdict `json:"results"`
	OverallRiskScore string       `json:"overallRiskScore"`
}

// Verdict is one rule's outcome against one unit of text.
type Verdict struct {
	RuleID      string
	FlagColor   string
	Matched     bool
	Explanation string
	Evidence    []assessments.Evidence
	Confidence  *float64
}

// ChecklistResult is the outcome of one holistic checklist pass.
type ChecklistResult struct {
	Verdicts         []Verdict
	OverallRiskScore string
}

// Evaluator runs policy rules against agreement text via the reasoning
// service.
type Evaluator struct {
	LLM         llm.Client
	Temperature float32
}

// EvaluateRule evaluates one rule against one text unit. On any
// reasoning-service failure it returns a safe default verdict (GREEN,
// unmatched, zero confidence) together with the error, so one bad call
// never sinks a whole run.
func (e *Evaluator) EvaluateRule(ctx context.Context, text string, rule rules.Rule) (Verdict, error) {
	req := llm.RulePrompt(text, ruleInput(rule))
	req.Shape = verdictShape
	req.Temperature = e.Temperature

	raw, err := e.LLM.Complete(ctx, req)
	if err != nil {
		return defaultVerdict(rule.RuleID, err), err
	}
	var rv rawVerdict
	if err := llm.DecodeInto(verdictShape, raw, &rv); err != nil {
		return defaultVerdict(rule.RuleID, err), err
	}
	rv.RuleID = rule.RuleID
	return e.normalize(text, rv), nil
}

// EvaluateChecklist evaluates every rule against the whole agreement in a
// single call. Unlike EvaluateRule it fails hard: a holistic run has no
// per-rule granularity to degrade to.
func (e *Evaluator) EvaluateChecklist(ctx context.Context, agreementText string, ruleSet []rules.Rule) (ChecklistResult, error) {
	req := llm.ChecklistPrompt(agreementText, ruleInputs(ruleSet))
	req.Shape = checklistShape
	req.Temperature = e.Temperature

	raw, err := e.LLM.Complete(ctx, req)
	if err != nil {
		return ChecklistResult{}, err
	}
	var rc rawChecklist
	if err := llm.DecodeInto(checklistShape, raw, &rc); err != nil {
		return ChecklistResult{}, err
	}
	if len(rc.Results) == 0 {
		return ChecklistResult{}, llm.ErrEmptyResult
	}

	byRuleID := make(map[string]rawVerdict, len(rc.Results))
	for _, rv := range rc.Results {
		byRuleID[rv.RuleID] = rv
	}

	// One verdict per rule, in checklist order. A rule the service skipped
	// gets the safe default.
	out := ChecklistResult{Verdicts: make([]Verdict, 0, len(ruleSet))}
	for _, rule := range ruleSet {
		rv, ok := byRuleID[rule.RuleID]
		if !ok {
			out.Verdicts = append(out.Verdicts, defaultVerdict(rule.RuleID, llm.ErrEmptyResult))
			continue
		}
		rv.RuleID = rule.RuleID
		out.Verdicts = append(out.Verdicts, e.normalize(agreementText, rv))
	}

	flags := make([]string, 0, len(out.Verdicts))
	for _, v := range out.Verdicts {
		flags = append(flags, v.FlagColor)
	}
	// Recompute the overall score rather than trusting the service's figure;
	// the two disagree when the service contradicts its own per-rule flags.
	out.OverallRiskScore = assessments.Worst(flags...)
	return out, nil
}

// normalize canonicalises the flag color and repairs evidence offsets
// against the source text. A non-canonical flag becomes YELLOW when the
// rule matched (a concern was raised, keep it visible) and GREEN otherwise.
func (e *Evaluator) normalize(text string, rv rawVerdict) Verdict {
	flag, ok := assessments.ParseFlag(rv.FlagColor)
	if !ok {
		if rv.Matched {
			flag = assessments.FlagYellow
		} else {
			flag = assessments.FlagGreen
		}
	}

	var spans []assessments.Evidence
	for _, ev := range rv.Evidence {
		if ev.Text == "" {
			continue
		}
		span := assessments.Evidence{
			Text:        ev.Text,
			StartOffset: ev.StartOffset,
			EndOffset:   ev.EndOffset,
		}
		// Keep the claimed offsets when the quote cannot be located; a
		// misplaced span still carries the quoted text.
		if located, found := evidence.Locate(text, ev.Text, ev.StartOffset); found {
			span.StartOffset = located.Start
			span.EndOffset = located.End
		}
		spans = append(spans, span)
	}

	return Verdict{
		RuleID:      rv.RuleID,
		FlagColor:   flag,
		Matched:     rv.Matched,
		Explanation: rv.Explanation,
		Evidence:    spans,
		Confidence:  rv.Confidence,
	}
}

func defaultVerdict(ruleID string, cause error) Verdict {
	zero := 0.0
	return Verdict{
		RuleID:      ruleID,
		FlagColor:   assessments.FlagGreen,
		Matched:     false,
		Explanation: fmt.Sprintf("Evaluation unavailable, defaulting to GREEN: %v", cause),
		Confidence:  &zero,
	}
}

func ruleInput(rule rules.Rule) llm.RuleInput {
	return llm.RuleInput{
		RuleID:             rule.RuleID,
		Name:               rule.Name,
		Description:        rule.Description,
		AcceptanceCriteria: rule.AcceptanceCriteria,
		Severity:           rule.Severity,
	}
}

func ruleInputs(ruleSet []rules.Rule) []llm.RuleInput {
	out := make([]llm.RuleInput, 0, len(ruleSet))
	for _, rule := range ruleSet {
		out = append(out, ruleInput(rule))
	}
	return out
}
