package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"contractreview-backend/internal/agreements"
	"contractreview-backend/internal/assessments"
	"contractreview-backend/internal/audit"
	"contractreview-backend/internal/clauses"
	"contractreview-backend/internal/llm"
	"contractreview-backend/internal/rules"
)

type fixture struct {
	orch        *Orchestrator
	agreements  *agreements.MemoryRepo
	rules       *rules.MemoryRepo
	clauses     *clauses.MemoryRepo
	assessments *assessments.MemoryRepo
	audit       *audit.MemoryRepo
}

func newFixture(client llm.Client) *fixture {
	f := &fixture{
		agreements:  agreements.NewMemoryRepo(),
		rules:       rules.NewMemoryRepo(),
		clauses:     clauses.NewMemoryRepo(),
		assessments: assessments.NewMemoryRepo(),
		audit:       audit.NewMemoryRepo(),
	}
	f.orch = &Orchestrator{
		Agreements:  f.agreements,
		Rules:       f.rules,
		Clauses:     f.clauses,
		Assessments: f.assessments,
		Audit:       f.audit,
		Extractor:   &clauses.Extractor{LLM: client},
		Evaluator:   &Evaluator{LLM: client},
	}
	return f
}

func (f *fixture) seedAgreement(t *testing.T, id, text string) {
	t.Helper()
	now := time.Now().UTC()
	err := f.agreements.Create(context.Background(), agreements.Agreement{
		ID:        id,
		Title:     "Master Services Agreement",
		FullText:  text,
		Status:    agreements.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed agreement: %v", err)
	}
}

func (f *fixture) seedRule(t *testing.T, ruleID, name string) {
	t.Helper()
	rule := testRule(ruleID, name)
	rule.CreatedAt = time.Now().UTC()
	rule.UpdatedAt = rule.CreatedAt
	if err := f.rules.Create(context.Background(), rule); err != nil {
		t.Fatalf("seed rule: %v", err)
	}
}

func (f *fixture) seedClause(t *testing.T, id, agreementID, content string, position int) {
	t.Helper()
	start := 0
	end := len(content)
	err := f.clauses.BulkInsert(context.Background(), []clauses.Clause{{
		ID:          id,
		AgreementID: agreementID,
		Position:    position,
		Content:     content,
		StartOffset: &start,
		EndOffset:   &end,
		CreatedAt:   time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("seed clause: %v", err)
	}
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func terminal(events []Event) Event {
	if len(events) == 0 {
		return Event{}
	}
	return events[len(events)-1]
}

const yellowVerdict = `{"flagColor": "YELLOW", "matched": true, "explanation": "needs review", "confidence": 0.7}`

func TestRunPerClauseReplacesPriorResults(t *testing.T) {
	f := newFixture(scriptedLLM{respond: func(llm.Request) (string, error) {
		return yellowVerdict, nil
	}})
	ctx := context.Background()
	f.seedAgreement(t, "agr-1", "clause one text")
	f.seedRule(t, "PRIVACY-001", "Privacy")
	f.seedRule(t, "TERM-001", "Term")
	f.seedClause(t, "clause-1", "agr-1", "clause one text", 0)

	// Leftovers from an earlier run.
	stale := assessments.Assessment{
		ID: "stale-1", AgreementID: "agr-1", RuleID: "OLD-001",
		FlagColor: assessments.FlagRed, Explanation: "old", CreatedAt: time.Now().UTC(),
	}
	if err := f.assessments.BulkInsert(ctx, []assessments.Assessment{stale}); err != nil {
		t.Fatalf("seed stale assessment: %v", err)
	}
	staleAudit := audit.NewRecorder("agr-1")
	staleAudit.Log(audit.Entry{Step: audit.StepDecision, Action: "finalize"})
	if err := staleAudit.Flush(ctx, f.audit); err != nil {
		t.Fatalf("seed stale audit: %v", err)
	}

	events, err := f.orch.Run(ctx, "agr-1", ModePerClause)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	all := drain(events)
	last := terminal(all)
	if last.Type != EventComplete {
		t.Fatalf("terminal event = %+v, want complete", last)
	}
	if last.Summary.OverallRiskScore != assessments.FlagYellow {
		t.Fatalf("overall = %s, want YELLOW", last.Summary.OverallRiskScore)
	}

	list, err := f.assessments.ListByAgreement(ctx, "agr-1")
	if err != nil {
		t.Fatalf("ListByAgreement: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d assessments, want 2 (one per rule)", len(list))
	}
	for _, a := range list {
		if a.ID == "stale-1" {
			t.Fatalf("stale assessment survived the rerun")
		}
	}

	trail, err := f.audit.ListByAgreement(ctx, "agr-1")
	if err != nil {
		t.Fatalf("audit ListByAgreement: %v", err)
	}
	// extraction + one evaluation per rule + decision
	if len(trail) != 4 {
		t.Fatalf("got %d audit entries, want 4", len(trail))
	}
	for i, e := range trail {
		if e.StepOrder != i+1 {
			t.Fatalf("audit entry %d has stepOrder %d", i, e.StepOrder)
		}
	}

	agreement, err := f.agreements.GetByID(ctx, "agr-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if agreement.Status != agreements.StatusAnalyzed {
		t.Fatalf("agreement status = %s, want analyzed", agreement.Status)
	}
	if agreement.AnalyzedAt == nil {
		t.Fatalf("analyzedAt not set")
	}
	if agreement.OverallRiskScore == nil || *agreement.OverallRiskScore != assessments.FlagYellow {
		t.Fatalf("overallRiskScore = %v, want YELLOW", agreement.OverallRiskScore)
	}
}

func TestRunPerClauseIsolatesRuleFailures(t *testing.T) {
	f := newFixture(scriptedLLM{respond: func(req llm.Request) (string, error) {
		if strings.Contains(req.Prompt, "Privacy") {
			return "", llm.Unavailable(errors.New("upstream 503"))
		}
		return yellowVerdict, nil
	}})
	ctx := context.Background()
	f.seedAgreement(t, "agr-1", "clause one text")
	f.seedRule(t, "PRIVACY-001", "Privacy")
	f.seedRule(t, "TERM-001", "Term")
	f.seedRule(t, "IP-001", "IP")
	f.seedClause(t, "clause-1", "agr-1", "clause one text", 0)

	events, err := f.orch.Run(ctx, "agr-1", ModePerClause)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	last := terminal(drain(events))
	if last.Type != EventComplete {
		t.Fatalf("terminal event = %+v, want complete", last)
	}

	list, err := f.assessments.ListByAgreement(ctx, "agr-1")
	if err != nil {
		t.Fatalf("ListByAgreement: %v", err)
	}
	// The failed rule degraded to an unmatched GREEN default, which is not
	// worth persisting; the other two rules still landed.
	if len(list) != 2 {
		t.Fatalf("got %d assessments, want 2", len(list))
	}
	for _, a := range list {
		if a.RuleID == "PRIVACY-001" {
			t.Fatalf("degraded rule should not be persisted")
		}
	}
	if last.Summary.OverallRiskScore != assessments.FlagYellow {
		t.Fatalf("overall = %s, want YELLOW", last.Summary.OverallRiskScore)
	}

	trail, err := f.audit.ListByAgreement(ctx, "agr-1")
	if err != nil {
		t.Fatalf("audit ListByAgreement: %v", err)
	}
	var degraded int
	for _, e := range trail {
		if e.Metadata != nil && e.Metadata["degraded"] == true {
			degraded++
		}
	}
	if degraded != 1 {
		t.Fatalf("got %d degraded audit entries, want 1", degraded)
	}
}

func TestRunHolisticPersistsAllVerdicts(t *testing.T) {
	resp := `{
		"results": [
			{"ruleId": "PRIVACY-001", "flagColor": "GREEN", "matched": false, "explanation": "no personal data involved"},
			{"ruleId": "LIABILITY-001", "flagColor": "RED", "matched": true, "explanation": "liability uncapped", "confidence": 0.9}
		],
		"overallRiskScore": "RED"
	}`
	f := newFixture(scriptedLLM{respond: func(llm.Request) (string, error) {
		return resp, nil
	}})
	ctx := context.Background()
	f.seedAgreement(t, "agr-1", "full agreement text")
	f.seedRule(t, "PRIVACY-001", "Privacy")
	f.seedRule(t, "LIABILITY-001", "Liability")

	events, err := f.orch.Run(ctx, "agr-1", ModeHolistic)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	last := terminal(drain(events))
	if last.Type != EventComplete {
		t.Fatalf("terminal event = %+v, want complete", last)
	}
	if last.Summary.Mode != ModeHolistic {
		t.Fatalf("summary mode = %s", last.Summary.Mode)
	}
	if last.Summary.OverallRiskScore != assessments.FlagRed {
		t.Fatalf("overall = %s, want RED", last.Summary.OverallRiskScore)
	}

	list, err := f.assessments.ListByAgreement(ctx, "agr-1")
	if err != nil {
		t.Fatalf("ListByAgreement: %v", err)
	}
	// Holistic runs keep every verdict, compliant ones included, so the
	// checklist report is complete.
	if len(list) != 2 {
		t.Fatalf("got %d assessments, want 2", len(list))
	}

	trail, err := f.audit.ListByAgreement(ctx, "agr-1")
	if err != nil {
		t.Fatalf("audit ListByAgreement: %v", err)
	}
	// validation + one evaluation per rule + decision
	if len(trail) != 4 {
		t.Fatalf("got %d audit entries, want 4", len(trail))
	}
	if trail[len(trail)-1].Step != audit.StepDecision {
		t.Fatalf("last audit step = %s, want decision", trail[len(trail)-1].Step)
	}
}

func TestRunHolisticFailureLeavesAgreementUntouched(t *testing.T) {
	f := newFixture(scriptedLLM{respond: func(llm.Request) (string, error) {
		return "", llm.Unavailable(errors.New("upstream down"))
	}})
	ctx := context.Background()
	f.seedAgreement(t, "agr-1", "full agreement text")
	f.seedRule(t, "PRIVACY-001", "Privacy")

	events, err := f.orch.Run(ctx, "agr-1", ModeHolistic)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	last := terminal(drain(events))
	if last.Type != EventError {
		t.Fatalf("terminal event = %+v, want error", last)
	}

	agreement, err := f.agreements.GetByID(ctx, "agr-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if agreement.Status != agreements.StatusDraft {
		t.Fatalf("agreement status = %s, want draft", agreement.Status)
	}
	if agreement.AnalyzedAt != nil {
		t.Fatalf("analyzedAt set on failed run")
	}
}

func TestRunInterruptedNeverMarksAnalyzed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(scriptedLLM{respond: func(llm.Request) (string, error) {
		cancel()
		return "", llm.Unavailable(context.Canceled)
	}})
	f.seedAgreement(t, "agr-1", "clause one text")
	f.seedRule(t, "PRIVACY-001", "Privacy")
	f.seedClause(t, "clause-1", "agr-1", "clause one text", 0)

	events, err := f.orch.Run(ctx, "agr-1", ModePerClause)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	last := terminal(drain(events))
	if last.Type != EventError {
		t.Fatalf("terminal event = %+v, want error", last)
	}

	agreement, err := f.agreements.GetByID(context.Background(), "agr-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if agreement.Status != agreements.StatusDraft {
		t.Fatalf("interrupted run changed status to %s", agreement.Status)
	}
	list, err := f.assessments.ListByAgreement(context.Background(), "agr-1")
	if err != nil {
		t.Fatalf("ListByAgreement: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("interrupted run persisted %d assessments", len(list))
	}
}

func TestRunPreconditions(t *testing.T) {
	f := newFixture(scriptedLLM{respond: func(llm.Request) (string, error) {
		return yellowVerdict, nil
	}})
	ctx := context.Background()
	f.seedAgreement(t, "agr-1", "text")

	if _, err := f.orch.Run(ctx, "agr-1", ModeHolistic); !errors.Is(err, ErrNoActiveRules) {
		t.Fatalf("expected ErrNoActiveRules, got %v", err)
	}

	f.seedRule(t, "PRIVACY-001", "Privacy")
	if _, err := f.orch.Run(ctx, "missing", ModeHolistic); !errors.Is(err, agreements.ErrNotFound) {
		t.Fatalf("expected agreement not found, got %v", err)
	}
	if _, err := f.orch.Run(ctx, "agr-1", "sideways"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}
