package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contractreview-backend/internal/agreements"
	"contractreview-backend/internal/assessments"
	"contractreview-backend/internal/audit"
	"contractreview-backend/internal/clauses"
	"contractreview-backend/internal/rules"
	"contractreview-backend/internal/shared/metrics"
	"contractreview-backend/internal/shared/telemetry"
)

// Analysis modes.
const (
	// ModeHolistic reviews the whole agreement against the checklist in one
	// reasoning call.
	ModeHolistic = "holistic"
	// ModePerClause segments the agreement into clauses and evaluates every
	// active rule against each clause.
	ModePerClause = "per_clause"
)

// Orchestrator drives analysis runs end to end: clear previous results,
// extract clauses when needed, evaluate rules, persist assessments and the
// audit trail, and finally mark the agreement analyzed. An agreement is
// marked analyzed only when the whole run finished; an interrupted run
// leaves it in its prior state with no partial results.
type Orchestrator struct {
	Agreements  agreements.Repo
	Rules       rules.Repo
	Clauses     clauses.Repo
	Assessments assessments.Repo
	Audit       audit.Repo
	Extractor   *clauses.Extractor
	Evaluator   *Evaluator
}

// Run starts an analysis run. Precondition failures (unknown agreement,
// empty checklist, bad mode) are returned synchronously; once a channel is
// returned the run is underway and reports everything, success or failure,
// as events. The channel carries ordered progress events followed by
// exactly one terminal event and is then closed.
func (o *Orchestrator) Run(ctx context.Context, agreementID, mode string) (<-chan Event, error) {
	if mode != ModeHolistic && mode != ModePerClause {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	agreement, err := o.Agreements.GetByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	active, err := o.Rules.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, ErrNoActiveRules
	}

	events := make(chan Event, 16)
	go o.runAndReport(ctx, agreement, active, mode, events)
	return events, nil
}

func (o *Orchestrator) runAndReport(ctx context.Context, agreement agreements.Agreement, active []rules.Rule, mode string, events chan<- Event) {
	defer close(events)
	started := time.Now()
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.started", map[string]any{
		"agreement_id": agreement.ID,
		"mode":         mode,
		"rule_count":   len(active),
	})

	var summary *RunSummary
	var err error
	switch mode {
	case ModePerClause:
		summary, err = o.runPerClause(ctx, agreement, active, events)
	default:
		summary, err = o.runHolistic(ctx, agreement, active, events)
	}

	elapsed := float64(time.Since(started).Milliseconds())
	if err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Error("analysis.failed", map[string]any{
			"agreement_id": agreement.ID,
			"mode":         mode,
			"error":        err.Error(),
		})
		emit(ctx, events, errorEvent(err.Error()))
		return
	}
	summary.DurationMs = elapsed
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(elapsed)
	telemetry.Info("analysis.completed", map[string]any{
		"agreement_id":       agreement.ID,
		"mode":               mode,
		"overall_risk_score": summary.OverallRiskScore,
		"duration_ms":        elapsed,
	})
	emit(ctx, events, Event{Type: EventComplete, Summary: summary})
}

// emit sends without blocking past the run's lifetime: a consumer that went
// away (client disconnect) cancels ctx, and the run must not leak waiting
// on it.
func emit(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
		return
	default:
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

// clearPrevious discards the prior run's outputs so a rerun replaces them
// rather than merging.
func (o *Orchestrator) clearPrevious(ctx context.Context, agreementID string) error {
	if err := o.Assessments.DeleteByAgreement(ctx, agreementID); err != nil {
		return fmt.Errorf("clear assessments: %w", err)
	}
	if err := o.Audit.DeleteByAgreement(ctx, agreementID); err != nil {
		return fmt.Errorf("clear audit trail: %w", err)
	}
	return nil
}

func (o *Orchestrator) runHolistic(ctx context.Context, agreement agreements.Agreement, active []rules.Rule, events chan<- Event) (*RunSummary, error) {
	if err := o.clearPrevious(ctx, agreement.ID); err != nil {
		return nil, err
	}
	recorder := audit.NewRecorder(agreement.ID)
	emit(ctx, events, progressEvent(StatusAnalyzing, fmt.Sprintf("Evaluating %d policy rules", len(active))))

	result, err := o.Evaluator.EvaluateChecklist(ctx, agreement.FullText, active)
	if err != nil {
		recorder.Log(audit.Entry{
			Step:      audit.StepValidation,
			Action:    "checklist_evaluation_failed",
			Reasoning: err.Error(),
		})
		if flushErr := recorder.Flush(ctx, o.Audit); flushErr != nil {
			telemetry.Error("audit.flush", map[string]any{"agreement_id": agreement.ID, "error": flushErr.Error()})
		}
		return nil, fmt.Errorf("checklist evaluation: %w", err)
	}

	recorder.Log(audit.Entry{
		Step:   audit.StepValidation,
		Action: "checklist_response_validated",
		Output: map[string]any{"resultCount": len(result.Verdicts)},
	})

	now := time.Now().UTC()
	list := make([]assessments.Assessment, 0, len(result.Verdicts))
	for _, v := range result.Verdicts {
		recorder.Log(audit.Entry{
			Step:      audit.StepRuleEvaluation,
			RuleID:    v.RuleID,
			Action:    "evaluate_rule",
			Output:    map[string]any{"flagColor": v.FlagColor, "matched": v.Matched},
			Reasoning: v.Explanation,
		})
		list = append(list, verdictAssessment(agreement.ID, "", v, now))
	}

	recorder.Log(audit.Entry{
		Step:   audit.StepDecision,
		Action: "finalize_overall_risk",
		Output: map[string]any{"overallRiskScore": result.OverallRiskScore},
	})

	return o.finishRun(ctx, agreement, recorder, list, &RunSummary{
		AgreementID:      agreement.ID,
		Mode:             ModeHolistic,
		OverallRiskScore: result.OverallRiskScore,
		TotalRules:       len(active),
		AssessmentCount:  len(list),
	})
}

func (o *Orchestrator) runPerClause(ctx context.Context, agreement agreements.Agreement, active []rules.Rule, events chan<- Event) (*RunSummary, error) {
	if err := o.clearPrevious(ctx, agreement.ID); err != nil {
		return nil, err
	}
	recorder := audit.NewRecorder(agreement.ID)

	emit(ctx, events, progressEvent(StatusExtracting, "Extracting clauses"))
	clauseList, err := o.Clauses.ListByAgreement(ctx, agreement.ID)
	if err != nil {
		return nil, fmt.Errorf("load clauses: %w", err)
	}
	if len(clauseList) == 0 {
		clauseList = o.Extractor.Extract(ctx, agreement.ID, agreement.FullText)
		if err := o.Clauses.BulkInsert(ctx, clauseList); err != nil {
			return nil, fmt.Errorf("store clauses: %w", err)
		}
	}
	recorder.Log(audit.Entry{
		Step:          audit.StepExtraction,
		Action:        "extract_clauses",
		ExtractedData: map[string]any{"clauseCount": len(clauseList)},
	})

	now := time.Now().UTC()
	var list []assessments.Assessment
	var flags []string
	for i, clause := range clauseList {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("analysis interrupted: %w", ctx.Err())
		}
		emit(ctx, events, Event{
			Type:          EventProgress,
			Status:        StatusAnalyzing,
			ClauseID:      clause.ID,
			ClauseNumber:  clause.ClauseNumber,
			CurrentClause: i + 1,
			TotalClauses:  len(clauseList),
			Message:       fmt.Sprintf("Analyzing clause %d of %d", i+1, len(clauseList)),
		})
		for _, rule := range active {
			verdict, evalErr := o.Evaluator.EvaluateRule(ctx, clause.Content, rule)
			if evalErr != nil {
				if ctx.Err() != nil {
					return nil, fmt.Errorf("analysis interrupted: %w", ctx.Err())
				}
				telemetry.Error("analysis.rule_degraded", map[string]any{
					"agreement_id": agreement.ID,
					"clause_id":    clause.ID,
					"rule_id":      rule.RuleID,
					"error":        evalErr.Error(),
				})
			}
			entry := audit.Entry{
				Step:      audit.StepRuleEvaluation,
				RuleID:    rule.RuleID,
				Action:    "evaluate_rule",
				Input:     map[string]any{"clauseId": clause.ID},
				Output:    map[string]any{"flagColor": verdict.FlagColor, "matched": verdict.Matched},
				Reasoning: verdict.Explanation,
			}
			if evalErr != nil {
				entry.Metadata = map[string]any{"degraded": true, "error": evalErr.Error()}
			}
			recorder.Log(entry)

			flags = append(flags, verdict.FlagColor)
			// Only keep verdicts that say something: a rule that neither
			// matched nor raised a flag adds noise, not signal.
			if verdict.Matched || verdict.FlagColor != assessments.FlagGreen {
				list = append(list, verdictAssessment(agreement.ID, clause.ID, translateOffsets(verdict, clause), now))
			}
		}
	}

	overall := assessments.Worst(flags...)
	recorder.Log(audit.Entry{
		Step:   audit.StepDecision,
		Action: "finalize_overall_risk",
		Output: map[string]any{"overallRiskScore": overall, "assessmentCount": len(list)},
	})

	return o.finishRun(ctx, agreement, recorder, list, &RunSummary{
		AgreementID:      agreement.ID,
		Mode:             ModePerClause,
		OverallRiskScore: overall,
		TotalClauses:     len(clauseList),
		TotalRules:       len(active),
		AssessmentCount:  len(list),
	})
}

// finishRun persists the run's outputs in order: assessments, audit trail,
// then the agreement status flip. The status flip comes last so a failure
// anywhere earlier never yields an agreement that claims to be analyzed.
func (o *Orchestrator) finishRun(ctx context.Context, agreement agreements.Agreement, recorder *audit.Recorder, list []assessments.Assessment, summary *RunSummary) (*RunSummary, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", ctx.Err())
	}
	if err := o.Assessments.BulkInsert(ctx, list); err != nil {
		return nil, fmt.Errorf("store assessments: %w", err)
	}
	if err := recorder.Flush(ctx, o.Audit); err != nil {
		return nil, fmt.Errorf("store audit trail: %w", err)
	}
	if err := o.Agreements.MarkAnalyzed(ctx, agreement.ID, summary.OverallRiskScore, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("mark analyzed: %w", err)
	}
	return summary, nil
}

func verdictAssessment(agreementID, clauseID string, v Verdict, now time.Time) assessments.Assessment {
	return assessments.Assessment{
		ID:          uuid.NewString(),
		AgreementID: agreementID,
		RuleID:      v.RuleID,
		ClauseID:    clauseID,
		FlagColor:   v.FlagColor,
		Explanation: v.Explanation,
		Evidence:    v.Evidence,
		Confidence:  v.Confidence,
		CreatedAt:   now,
	}
}

// translateOffsets shifts clause-relative evidence spans into agreement
// coordinates when the clause's own position in the document is known.
func translateOffsets(v Verdict, clause clauses.Clause) Verdict {
	if clause.StartOffset == nil || len(v.Evidence) == 0 {
		return v
	}
	base := *clause.StartOffset
	shifted := make([]assessments.Evidence, len(v.Evidence))
	for i, ev := range v.Evidence {
		ev.StartOffset += base
		ev.EndOffset += base
		shifted[i] = ev
	}
	v.Evidence = shifted
	return v
}
