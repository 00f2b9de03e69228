package audit

import (
	"context"
	"testing"
)

func TestRecorderAssignsContiguousStepOrder(t *testing.T) {
	rec := NewRecorder("agr-1")
	rec.Log(Entry{Step: StepExtraction, Action: "extract_clauses"})
	rec.Log(Entry{Step: StepRuleEvaluation, Action: "evaluate_rule", RuleID: "PRIVACY-001"})
	rec.Log(Entry{Step: StepDecision, Action: "finalize"})

	repo := NewMemoryRepo()
	if err := rec.Flush(context.Background(), repo); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	entries, err := repo.ListByAgreement(context.Background(), "agr-1")
	if err != nil {
		t.Fatalf("ListByAgreement: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.StepOrder != i+1 {
			t.Fatalf("entry %d has stepOrder %d, want %d", i, e.StepOrder, i+1)
		}
		if e.AgreementID != "agr-1" {
			t.Fatalf("entry %d has agreementID %q", i, e.AgreementID)
		}
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Fatalf("entry %d missing id or timestamp", i)
		}
	}
}

func TestRecorderStepOrderResetsPerRun(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	first := NewRecorder("agr-1")
	first.Log(Entry{Step: StepExtraction, Action: "extract_clauses"})
	first.Log(Entry{Step: StepDecision, Action: "finalize"})
	if err := first.Flush(ctx, repo); err != nil {
		t.Fatalf("Flush first run: %v", err)
	}

	// A rerun deletes the prior trail before recording its own.
	if err := repo.DeleteByAgreement(ctx, "agr-1"); err != nil {
		t.Fatalf("DeleteByAgreement: %v", err)
	}
	second := NewRecorder("agr-1")
	second.Log(Entry{Step: StepExtraction, Action: "extract_clauses"})
	if err := second.Flush(ctx, repo); err != nil {
		t.Fatalf("Flush second run: %v", err)
	}

	entries, err := repo.ListByAgreement(ctx, "agr-1")
	if err != nil {
		t.Fatalf("ListByAgreement: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries after rerun, want 1", len(entries))
	}
	if entries[0].StepOrder != 1 {
		t.Fatalf("rerun first entry has stepOrder %d, want 1", entries[0].StepOrder)
	}
}

func TestRecorderFlushEmptyIsNoop(t *testing.T) {
	rec := NewRecorder("agr-1")
	if err := rec.Flush(context.Background(), NewMemoryRepo()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if rec.Len() != 0 {
		t.Fatalf("Len = %d, want 0", rec.Len())
	}
}
