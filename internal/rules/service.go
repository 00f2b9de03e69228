package rules

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for the policy checklist.
type Service struct {
	Repo Repo
}

// CreateInput carries the writable fields of a rule.
type CreateInput struct {
	RuleID             string `json:"ruleId"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	AcceptanceCriteria string `json:"acceptanceCriteria"`
	Severity           string `json:"severity"`
	IsActive           *bool  `json:"isActive"`
}

// Create validates and stores a new rule.
func (s *Service) Create(ctx context.Context, input CreateInput) (Rule, error) {
	if strings.TrimSpace(input.RuleID) == "" || strings.TrimSpace(input.Name) == "" {
		return Rule{}, errors.New("ruleId and name are required")
	}
	if strings.TrimSpace(input.Description) == "" || strings.TrimSpace(input.AcceptanceCriteria) == "" {
		return Rule{}, errors.New("description and acceptanceCriteria are required")
	}
	severity, ok := ValidSeverity(input.Severity)
	if !ok {
		return Rule{}, errors.New("severity must be SHOW_STOPPER, NEGOTIABLE or COMPLIANT")
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	now := time.Now().UTC()
	rule := Rule{
		ID:                 uuid.NewString(),
		RuleID:             strings.TrimSpace(input.RuleID),
		Name:               strings.TrimSpace(input.Name),
		Description:        input.Description,
		AcceptanceCriteria: input.AcceptanceCriteria,
		Severity:           severity,
		IsActive:           active,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.Repo.Create(ctx, rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// Update applies writable fields onto an existing rule.
func (s *Service) Update(ctx context.Context, id string, input CreateInput) (Rule, error) {
	rule, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Rule{}, err
	}
	if strings.TrimSpace(input.Name) != "" {
		rule.Name = strings.TrimSpace(input.Name)
	}
	if strings.TrimSpace(input.Description) != "" {
		rule.Description = input.Description
	}
	if strings.TrimSpace(input.AcceptanceCriteria) != "" {
		rule.AcceptanceCriteria = input.AcceptanceCriteria
	}
	if strings.TrimSpace(input.Severity) != "" {
		severity, ok := ValidSeverity(input.Severity)
		if !ok {
			return Rule{}, errors.New("severity must be SHOW_STOPPER, NEGOTIABLE or COMPLIANT")
		}
		rule.Severity = severity
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	rule.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// List returns all rules.
func (s *Service) List(ctx context.Context) ([]Rule, error) {
	return s.Repo.List(ctx)
}

// ActiveSnapshot returns the active rule set used for one analysis run.
func (s *Service) ActiveSnapshot(ctx context.Context) ([]Rule, error) {
	return s.Repo.ListActive(ctx)
}
