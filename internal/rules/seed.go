package rules

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultChecklist is the starter policy checklist installed by cmd/seedrules.
var DefaultChecklist = []Rule{
	{
		RuleID:             "PRIVACY-001",
		Name:               "Data Privacy - GDPR Compliance",
		Description:        "Ensures clauses comply with GDPR data protection requirements",
		AcceptanceCriteria: "Clauses that mention data processing, personal data, or data transfers must include appropriate safeguards, consent mechanisms, and data subject rights. Flag any clause that allows unrestricted data processing or lacks data protection measures.",
		Severity:           SeverityShowStopper,
	},
	{
		RuleID:             "LIABILITY-001",
		Name:               "Liability Limitation",
		Description:        "Identifies overly broad liability limitations or exclusions",
		AcceptanceCriteria: "Flag clauses that completely exclude liability for gross negligence, willful misconduct, or breach of confidentiality, and clauses with liability caps that expose the company to excessive risk.",
		Severity:           SeverityShowStopper,
	},
	{
		RuleID:             "TERM-001",
		Name:               "Termination Rights",
		Description:        "Checks for fair termination provisions",
		AcceptanceCriteria: "Flag clauses that allow immediate termination without cause, lack reasonable notice periods, or give one party significantly more favorable termination rights than the other.",
		Severity:           SeverityNegotiable,
	},
	{
		RuleID:             "IP-001",
		Name:               "Intellectual Property",
		Description:        "Ensures proper IP ownership and licensing terms",
		AcceptanceCriteria: "IP clauses must be clear on ownership, licensing, and usage rights. Flag clauses claiming ownership of pre-existing IP, requiring assignment of all IP without consideration, or granting overly broad licenses.",
		Severity:           SeverityNegotiable,
	},
	{
		RuleID:             "PAYMENT-001",
		Name:               "Payment Terms",
		Description:        "Validates payment terms and conditions",
		AcceptanceCriteria: "Flag payment terms exceeding 90 days, excessive late fees, or requirements for upfront payment without corresponding deliverables or milestones.",
		Severity:           SeverityCompliant,
	},
}

// Seed installs the default checklist, skipping rules that already exist.
// It returns the number of rules created.
func Seed(ctx context.Context, repo Repo) (int, error) {
	created := 0
	for _, rule := range DefaultChecklist {
		if _, err := repo.GetByRuleID(ctx, rule.RuleID); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return created, err
		}
		now := time.Now().UTC()
		rule.ID = uuid.NewString()
		rule.IsActive = true
		rule.CreatedAt = now
		rule.UpdatedAt = now
		if err := repo.Create(ctx, rule); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
