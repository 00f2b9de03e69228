package clauses

import (
	"context"
	"encoding/json"
	"testing"

	"contractreview-backend/internal/llm"
)

type staticLLM struct {
	resp string
	err  error
}

func (s staticLLM) Complete(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	_ = ctx
	_ = req
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.resp), nil
}

const sampleAgreement = "1. CONFIDENTIALITY. Recipient shall keep all information secret.\n2. TERM. This agreement lasts two years."

func TestExtractSegmentsClauses(t *testing.T) {
	resp := `{"clauses":[
		{"clauseNumber":"1","title":"Confidentiality","content":"1. CONFIDENTIALITY. Recipient shall keep all information secret."},
		{"clauseNumber":"2","title":"Term","content":"2. TERM. This agreement lasts two years."}
	]}`
	ex := &Extractor{LLM: staticLLM{resp: resp}}

	got := ex.Extract(context.Background(), "agr-1", sampleAgreement)
	if len(got) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(got))
	}
	for i, clause := range got {
		if clause.Position != i {
			t.Fatalf("clause %d has position %d", i, clause.Position)
		}
		if clause.AgreementID != "agr-1" {
			t.Fatalf("clause %d has agreement id %q", i, clause.AgreementID)
		}
	}
	first := got[0]
	if first.StartOffset == nil || *first.StartOffset != 0 {
		t.Fatalf("expected first clause offset 0, got %v", first.StartOffset)
	}
	second := got[1]
	if second.StartOffset == nil {
		t.Fatalf("expected second clause offsets to be recovered")
	}
	if sampleAgreement[*second.StartOffset:*second.EndOffset] != second.Content {
		t.Fatalf("offsets do not reproduce clause content")
	}
}

func TestExtractOffsetsAbsentWhenParaphrased(t *testing.T) {
	resp := `{"clauses":[{"content":"The recipient promises secrecy (paraphrased)."}]}`
	ex := &Extractor{LLM: staticLLM{resp: resp}}

	got := ex.Extract(context.Background(), "agr-1", sampleAgreement)
	if len(got) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(got))
	}
	if got[0].StartOffset != nil || got[0].EndOffset != nil {
		t.Fatalf("expected offsets to be absent for paraphrased content")
	}
}

func TestExtractFallbackOnServiceFailure(t *testing.T) {
	tests := []struct {
		name string
		llm  staticLLM
	}{
		{name: "unavailable", llm: staticLLM{err: llm.ErrUnavailable}},
		{name: "malformed", llm: staticLLM{resp: "```json\n{broken"}},
		{name: "empty", llm: staticLLM{resp: `{"clauses":[]}`}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ex := &Extractor{LLM: tt.llm}
			got := ex.Extract(context.Background(), "agr-1", sampleAgreement)
			if len(got) != 1 {
				t.Fatalf("expected exactly one fallback clause, got %d", len(got))
			}
			clause := got[0]
			if clause.Content != sampleAgreement {
				t.Fatalf("fallback clause content does not equal full input")
			}
			if clause.StartOffset == nil || *clause.StartOffset != 0 {
				t.Fatalf("fallback start offset = %v, want 0", clause.StartOffset)
			}
			if clause.EndOffset == nil || *clause.EndOffset != len(sampleAgreement) {
				t.Fatalf("fallback end offset = %v, want %d", clause.EndOffset, len(sampleAgreement))
			}
		})
	}
}
