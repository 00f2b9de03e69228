package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"contractreview-backend/internal/assessments"
	"contractreview-backend/internal/llm"
	"contractreview-backend/internal/rules"
)

type scriptedLLM struct {
	respond func(req llm.Request) (string, error)
}

func (s scriptedLLM) Complete(_ context.Context, req llm.Request) (json.RawMessage, error) {
	resp, err := s.respond(req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp), nil
}

func testRule(ruleID, name string) rules.Rule {
	return rules.Rule{
		ID:                 "id-" + ruleID,
		RuleID:             ruleID,
		Name:               name,
		Description:        name + " must be acceptable",
		AcceptanceCriteria: name + " follows policy",
		Severity:           rules.SeverityNegotiable,
		IsActive:           true,
	}
}

func TestEvaluateRuleDefaultsOnFailure(t *testing.T) {
	ev := &Evaluator{LLM: scriptedLLM{respond: func(llm.Request) (string, error) {
		return "", llm.Unavailable(context.DeadlineExceeded)
	}}}

	verdict, err := ev.EvaluateRule(context.Background(), "some clause text", testRule("PRIVACY-001", "Privacy"))
	if err == nil {
		t.Fatalf("expected error to surface")
	}
	if verdict.FlagColor != assessments.FlagGreen {
		t.Fatalf("default verdict flag = %s, want GREEN", verdict.FlagColor)
	}
	if verdict.Matched {
		t.Fatalf("default verdict should be unmatched")
	}
	if verdict.Confidence == nil || *verdict.Confidence != 0 {
		t.Fatalf("default verdict confidence = %v, want 0", verdict.Confidence)
	}
}

func TestEvaluateRuleNormalizesFlagColor(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		matched bool
		want    string
	}{
		{name: "lowercase canonical", flag: "red", matched: true, want: assessments.FlagRed},
		{name: "unknown matched becomes yellow", flag: "ORANGE", matched: true, want: assessments.FlagYellow},
		{name: "unknown unmatched becomes green", flag: "ORANGE", matched: false, want: assessments.FlagGreen},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := json.Marshal(map[string]any{
				"flagColor":   tt.flag,
				"matched":     tt.matched,
				"explanation": "because",
			})
			ev := &Evaluator{LLM: scriptedLLM{respond: func(llm.Request) (string, error) {
				return string(resp), nil
			}}}
			verdict, err := ev.EvaluateRule(context.Background(), "text", testRule("TERM-001", "Term"))
			if err != nil {
				t.Fatalf("EvaluateRule: %v", err)
			}
			if verdict.FlagColor != tt.want {
				t.Fatalf("flag = %s, want %s", verdict.FlagColor, tt.want)
			}
		})
	}
}

func TestEvaluateRuleRepairsEvidenceOffsets(t *testing.T) {
	text := "Payment is due in 30 days. Liability is capped at fees paid."
	quote := "Liability is capped at fees paid."
	resp := `{
		"flagColor": "YELLOW",
		"matched": true,
		"explanation": "cap present but narrow",
		"evidence": [{"text": "` + quote + `", "startOffset": 3, "endOffset": 9}],
		"confidence": 0.8
	}`
	ev := &Evaluator{LLM: scriptedLLM{respond: func(llm.Request) (string, error) {
		return resp, nil
	}}}

	verdict, err := ev.EvaluateRule(context.Background(), text, testRule("LIABILITY-001", "Liability"))
	if err != nil {
		t.Fatalf("EvaluateRule: %v", err)
	}
	if len(verdict.Evidence) != 1 {
		t.Fatalf("got %d evidence spans, want 1", len(verdict.Evidence))
	}
	span := verdict.Evidence[0]
	if text[span.StartOffset:span.EndOffset] != quote {
		t.Fatalf("repaired span [%d:%d] does not reproduce the quote", span.StartOffset, span.EndOffset)
	}
}

func TestEvaluateRuleKeepsClaimedOffsetsWhenQuoteMissing(t *testing.T) {
	resp := `{
		"flagColor": "RED",
		"matched": true,
		"explanation": "uncapped liability",
		"evidence": [{"text": "not actually in the text", "startOffset": 5, "endOffset": 29}]
	}`
	ev := &Evaluator{LLM: scriptedLLM{respond: func(llm.Request) (string, error) {
		return resp, nil
	}}}

	verdict, err := ev.EvaluateRule(context.Background(), "something else entirely", testRule("LIABILITY-001", "Liability"))
	if err != nil {
		t.Fatalf("EvaluateRule: %v", err)
	}
	span := verdict.Evidence[0]
	if span.StartOffset != 5 || span.EndOffset != 29 {
		t.Fatalf("claimed offsets were not preserved: [%d:%d]", span.StartOffset, span.EndOffset)
	}
}

func TestEvaluateChecklistFillsSkippedRules(t *testing.T) {
	resp := `{
		"results": [
			{"ruleId": "PRIVACY-001", "flagColor": "RED", "matched": true, "explanation": "data sold to third parties"}
		],
		"overallRiskScore": "GREEN"
	}`
	ev := &Evaluator{LLM: scriptedLLM{respond: func(req llm.Request) (string, error) {
		if !strings.Contains(req.Prompt, "Policy Checklist") {
			t.Fatalf("expected checklist prompt, got task %q", req.Task)
		}
		return resp, nil
	}}}

	ruleSet := []rules.Rule{testRule("PRIVACY-001", "Privacy"), testRule("TERM-001", "Term")}
	result, err := ev.EvaluateChecklist(context.Background(), "agreement text", ruleSet)
	if err != nil {
		t.Fatalf("EvaluateChecklist: %v", err)
	}
	if len(result.Verdicts) != 2 {
		t.Fatalf("got %d verdicts, want one per rule", len(result.Verdicts))
	}
	if result.Verdicts[0].FlagColor != assessments.FlagRed {
		t.Fatalf("first verdict flag = %s, want RED", result.Verdicts[0].FlagColor)
	}
	if result.Verdicts[1].FlagColor != assessments.FlagGreen {
		t.Fatalf("skipped rule should default to GREEN, got %s", result.Verdicts[1].FlagColor)
	}
	// The service claimed GREEN overall while flagging RED; the recomputed
	// score wins.
	if result.OverallRiskScore != assessments.FlagRed {
		t.Fatalf("overall = %s, want RED", result.OverallRiskScore)
	}
}

func TestEvaluateChecklistFailsHardOnMalformedResponse(t *testing.T) {
	ev := &Evaluator{LLM: scriptedLLM{respond: func(llm.Request) (string, error) {
		return `{"unexpected": true}`, nil
	}}}
	if _, err := ev.EvaluateChecklist(context.Background(), "text", []rules.Rule{testRule("IP-001", "IP")}); err == nil {
		t.Fatalf("expected malformed response to fail the checklist pass")
	}
}
