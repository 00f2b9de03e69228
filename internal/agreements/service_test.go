package agreements

import (
	"context"
	"strings"
	"testing"
	"time"
)

type recordingCleanup struct {
	deleted []string
}

func (r *recordingCleanup) DeleteByAgreement(_ context.Context, agreementID string) error {
	r.deleted = append(r.deleted, agreementID)
	return nil
}

func TestCreateValidatesInput(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", "a perfectly long agreement text"); err == nil {
		t.Fatalf("expected error for empty title")
	}
	if _, err := svc.Create(ctx, "NDA", "short"); err == nil {
		t.Fatalf("expected error for too-short text")
	}

	agreement, err := svc.Create(ctx, "  NDA  ", "This agreement is made between the parties.")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if agreement.Title != "NDA" {
		t.Fatalf("title not trimmed: %q", agreement.Title)
	}
	if agreement.Status != StatusDraft {
		t.Fatalf("status = %s, want draft", agreement.Status)
	}
	if agreement.AnalyzedAt != nil || agreement.OverallRiskScore != nil {
		t.Fatalf("new agreement carries analysis results")
	}
}

func TestUpdateResetsAnalysisAndArtifacts(t *testing.T) {
	repo := NewMemoryRepo()
	cleanup := &recordingCleanup{}
	svc := &Service{Repo: repo, Artifacts: []Cleanup{cleanup}}
	ctx := context.Background()

	agreement, err := svc.Create(ctx, "MSA", "Original agreement text with enough length.")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.MarkAnalyzed(ctx, agreement.ID, "RED", time.Now().UTC()); err != nil {
		t.Fatalf("MarkAnalyzed: %v", err)
	}

	updated, err := svc.Update(ctx, agreement.ID, "", "Replacement agreement text with enough length.")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != StatusDraft {
		t.Fatalf("status after update = %s, want draft", updated.Status)
	}
	if updated.AnalyzedAt != nil || updated.OverallRiskScore != nil {
		t.Fatalf("update kept stale analysis results")
	}
	if updated.Title != "MSA" {
		t.Fatalf("empty title should keep the old one, got %q", updated.Title)
	}
	if !strings.HasPrefix(updated.FullText, "Replacement") {
		t.Fatalf("text not replaced: %q", updated.FullText)
	}
	if len(cleanup.deleted) != 1 || cleanup.deleted[0] != agreement.ID {
		t.Fatalf("derived artifacts not dropped: %v", cleanup.deleted)
	}
}

func TestDeleteDropsArtifactsFirst(t *testing.T) {
	repo := NewMemoryRepo()
	cleanup := &recordingCleanup{}
	svc := &Service{Repo: repo, Artifacts: []Cleanup{cleanup}}
	ctx := context.Background()

	agreement, err := svc.Create(ctx, "SOW", "Statement of work content goes here.")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, agreement.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(cleanup.deleted) != 1 {
		t.Fatalf("artifacts not dropped on delete")
	}
	if _, err := svc.Get(ctx, agreement.ID); err == nil {
		t.Fatalf("agreement still present after delete")
	}
}

func TestListNewestFirstWithPaging(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		err := repo.Create(ctx, Agreement{
			ID:        string(rune('a' + i)),
			Title:     "Agreement",
			FullText:  "text",
			Status:    StatusDraft,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	page, err := svc.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d agreements, want 2", len(page))
	}
	if page[0].ID != "c" || page[1].ID != "b" {
		t.Fatalf("not newest-first: %s, %s", page[0].ID, page[1].ID)
	}

	rest, err := svc.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List offset: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != "a" {
		t.Fatalf("unexpected second page: %+v", rest)
	}
}
