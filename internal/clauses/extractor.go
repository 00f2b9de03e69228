package clauses

import (
	"context"
	"time"

	"github.com/google/uuid"

	"contractreview-backend/internal/evidence"
	"contractreview-backend/internal/llm"
	"contractreview-backend/internal/shared/telemetry"
)

// offsetSearchPrefix bounds how much clause content is used to recover
// offsets in the source. The service may paraphrase long content slightly,
// so a short prefix matches more reliably than the full text.
const offsetSearchPrefix = 100

var extractionShape = llm.MustShape("clause_extraction", `{
	"type": "object",
	"required": ["clauses"],
	"properties": {
		"clauses": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["content"],
				"properties": {
					"clauseNumber": {"type": ["string", "null"]},
					"title": {"type": ["string", "null"]},
					"content": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`)

type extractedClause struct {
	ClauseNumber string `json:"clauseNumber"`
	Title        string `json:"title"`
	Content      string `json:"content"`
}

type extractionResult struct {
	Clauses []extractedClause `json:"clauses"`
}

// Extractor segments agreement text into clauses via the reasoning service.
type Extractor struct {
	LLM         llm.Client
	Temperature float32
}

// Extract returns the agreement's clauses in document order. The extractor
// never fails: on any reasoning-service failure it falls back to a single
// clause spanning the whole input, so the pipeline always has at least one
// clause to evaluate.
func (e *Extractor) Extract(ctx context.Context, agreementID, agreementText string) []Clause {
	req := llm.ExtractionPrompt(agreementText)
	req.Shape = extractionShape
	req.Temperature = e.Temperature

	raw, err := e.LLM.Complete(ctx, req)
	if err != nil {
		telemetry.Error("extraction.fallback", map[string]any{
			"agreement_id": agreementID,
			"error":        err.Error(),
		})
		return []Clause{fallbackClause(agreementID, agreementText)}
	}

	var result extractionResult
	if err := llm.DecodeInto(extractionShape, raw, &result); err != nil {
		telemetry.Error("extraction.fallback", map[string]any{
			"agreement_id": agreementID,
			"error":        err.Error(),
		})
		return []Clause{fallbackClause(agreementID, agreementText)}
	}
	if len(result.Clauses) == 0 {
		telemetry.Error("extraction.fallback", map[string]any{
			"agreement_id": agreementID,
			"error":        llm.ErrEmptyResult.Error(),
		})
		return []Clause{fallbackClause(agreementID, agreementText)}
	}

	now := time.Now().UTC()
	out := make([]Clause, 0, len(result.Clauses))
	for i, extracted := range result.Clauses {
		clause := Clause{
			ID:           uuid.NewString(),
			AgreementID:  agreementID,
			Position:     i,
			ClauseNumber: extracted.ClauseNumber,
			Title:        extracted.Title,
			Content:      extracted.Content,
			CreatedAt:    now,
		}

		prefix := extracted.Content
		if len(prefix) > offsetSearchPrefix {
			prefix = prefix[:offsetSearchPrefix]
		}
		if span, ok := evidence.Locate(agreementText, prefix, -1); ok {
			start := span.Start
			end := span.Start + len(extracted.Content)
			if end > len(agreementText) {
				end = len(agreementText)
			}
			clause.StartOffset = &start
			clause.EndOffset = &end
		}
		out = append(out, clause)
	}
	return out
}

func fallbackClause(agreementID, agreementText string) Clause {
	start := 0
	end := len(agreementText)
	return Clause{
		ID:          uuid.NewString(),
		AgreementID: agreementID,
		Position:    0,
		Content:     agreementText,
		StartOffset: &start,
		EndOffset:   &end,
		CreatedAt:   time.Now().UTC(),
	}
}
