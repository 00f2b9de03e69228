package agreements

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"contractreview-backend/internal/extract"
	"contractreview-backend/internal/shared/storage/object"
)

// Cleanup removes analysis artifacts derived from an agreement (clauses,
// assessments, audit entries). They all hang off the agreement ID.
type Cleanup interface {
	DeleteByAgreement(ctx context.Context, agreementID string) error
}

// Service contains business logic for agreements.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Artifacts []Cleanup
}

// Create stores a new draft agreement from pasted text.
func (s *Service) Create(ctx context.Context, title, fullText string) (Agreement, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Agreement{}, errors.New("title is required")
	}
	if len(strings.TrimSpace(fullText)) < 10 {
		return Agreement{}, errors.New("agreement text must be at least 10 characters")
	}

	now := time.Now().UTC()
	agreement := Agreement{
		ID:        uuid.NewString(),
		Title:     title,
		FullText:  fullText,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, agreement); err != nil {
		return Agreement{}, err
	}
	return agreement, nil
}

// CreateFromUpload stores the original file in the object store, extracts
// its text and creates a draft agreement from it.
func (s *Service) CreateFromUpload(ctx context.Context, title, fileName string, body io.Reader) (Agreement, error) {
	if s.Store == nil {
		return Agreement{}, errors.New("object store not configured")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = fileName
	}

	storageKey, _, mimeType, err := s.Store.Save(ctx, "agreements", fileName, body)
	if err != nil {
		return Agreement{}, fmt.Errorf("store upload: %w", err)
	}

	text, err := extract.Text(ctx, s.Store, storageKey, mimeType, fileName)
	if err != nil {
		return Agreement{}, fmt.Errorf("extract agreement text: %w", err)
	}
	if len(strings.TrimSpace(text)) < 10 {
		return Agreement{}, errors.New("extracted agreement text is too short")
	}

	now := time.Now().UTC()
	agreement := Agreement{
		ID:        uuid.NewString(),
		Title:     title,
		FullText:  text,
		Status:    StatusDraft,
		SourceKey: storageKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, agreement); err != nil {
		return Agreement{}, err
	}
	return agreement, nil
}

// Get returns an agreement by ID.
func (s *Service) Get(ctx context.Context, id string) (Agreement, error) {
	if id == "" {
		return Agreement{}, errors.New("agreement id is required")
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns agreements newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Agreement, error) {
	return s.Repo.List(ctx, limit, offset)
}

// Update replaces title and text; any prior analysis result is reset.
func (s *Service) Update(ctx context.Context, id, title, fullText string) (Agreement, error) {
	agreement, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Agreement{}, err
	}
	if strings.TrimSpace(title) != "" {
		agreement.Title = strings.TrimSpace(title)
	}
	if strings.TrimSpace(fullText) != "" {
		agreement.FullText = fullText
	}
	if err := s.Repo.UpdateContent(ctx, agreement); err != nil {
		return Agreement{}, err
	}
	// New text invalidates everything derived from the old text.
	if err := s.dropArtifacts(ctx, id); err != nil {
		return Agreement{}, err
	}
	return s.Repo.GetByID(ctx, id)
}

// Delete removes an agreement and everything hanging off it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.dropArtifacts(ctx, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

func (s *Service) dropArtifacts(ctx context.Context, id string) error {
	for _, artifact := range s.Artifacts {
		if err := artifact.DeleteByAgreement(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
